package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
)

// MockSeenStore is a mock type for the SeenStore type
type MockSeenStore struct {
	mock.Mock
}

// MarkSeen provides a mock function with given fields: ctx, sourceID
func (_m *MockSeenStore) MarkSeen(ctx context.Context, sourceID string) (bool, error) {
	ret := _m.Called(ctx, sourceID)
	return ret.Bool(0), ret.Error(1)
}

// Forget provides a mock function with given fields: ctx, sourceID
func (_m *MockSeenStore) Forget(ctx context.Context, sourceID string) error {
	ret := _m.Called(ctx, sourceID)
	return ret.Error(0)
}

// NewMockSeenStore creates a new instance of MockSeenStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSeenStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSeenStore {
	m := &MockSeenStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.SeenStore = (*MockSeenStore)(nil)
