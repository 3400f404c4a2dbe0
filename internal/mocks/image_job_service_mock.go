package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
)

// MockImageJobService is a mock type for the ImageJobService type
type MockImageJobService struct {
	mock.Mock
}

// Submit provides a mock function with given fields: ctx
func (_m *MockImageJobService) Submit(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

// FetchImage provides a mock function with given fields: ctx, url
func (_m *MockImageJobService) FetchImage(ctx context.Context, url string) ([]byte, error) {
	ret := _m.Called(ctx, url)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// NewMockImageJobService creates a new instance of MockImageJobService. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageJobService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageJobService {
	m := &MockImageJobService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ImageJobService = (*MockImageJobService)(nil)
