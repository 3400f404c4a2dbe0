package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/models"
)

// MockContentGenerator is a mock type for the ContentGenerator type
type MockContentGenerator struct {
	mock.Mock
}

// ShouldRespond provides a mock function with given fields: ctx, text
func (_m *MockContentGenerator) ShouldRespond(ctx context.Context, text string) (models.Decision, error) {
	ret := _m.Called(ctx, text)

	var r0 models.Decision
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(models.Decision)
	}
	return r0, ret.Error(1)
}

// GeneratePost provides a mock function with given fields: ctx
func (_m *MockContentGenerator) GeneratePost(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

// GenerateReply provides a mock function with given fields: ctx, source
func (_m *MockContentGenerator) GenerateReply(ctx context.Context, source string) (string, error) {
	ret := _m.Called(ctx, source)
	return ret.String(0), ret.Error(1)
}

// GenerateGenericFUD provides a mock function with given fields: ctx, intro, reason, closing
func (_m *MockContentGenerator) GenerateGenericFUD(ctx context.Context, intro string, reason string, closing string) (string, error) {
	ret := _m.Called(ctx, intro, reason, closing)
	return ret.String(0), ret.Error(1)
}

// GenerateEditorializedFUD provides a mock function with given fields: ctx, tokenInfo
func (_m *MockContentGenerator) GenerateEditorializedFUD(ctx context.Context, tokenInfo string) (string, error) {
	ret := _m.Called(ctx, tokenInfo)
	return ret.String(0), ret.Error(1)
}

// NewMockContentGenerator creates a new instance of MockContentGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockContentGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockContentGenerator {
	m := &MockContentGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ContentGenerator = (*MockContentGenerator)(nil)
