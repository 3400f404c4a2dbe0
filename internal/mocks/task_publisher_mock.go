package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/messaging"
)

// MockTaskPublisher is a mock type for the TaskPublisher type
type MockTaskPublisher struct {
	mock.Mock
}

// PublishTask provides a mock function with given fields: ctx, payload
func (_m *MockTaskPublisher) PublishTask(ctx context.Context, payload messaging.GenerationTaskPayload) error {
	ret := _m.Called(ctx, payload)
	return ret.Error(0)
}

// NewMockTaskPublisher creates a new instance of MockTaskPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTaskPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTaskPublisher {
	m := &MockTaskPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.TaskPublisher = (*MockTaskPublisher)(nil)
