package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/messaging"
)

// MockResultPublisher is a mock type for the ResultPublisher type
type MockResultPublisher struct {
	mock.Mock
}

// PublishResult provides a mock function with given fields: ctx, payload, correlationID
func (_m *MockResultPublisher) PublishResult(ctx context.Context, payload messaging.GenerationResultPayload, correlationID string) error {
	ret := _m.Called(ctx, payload, correlationID)
	return ret.Error(0)
}

// NewMockResultPublisher creates a new instance of MockResultPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockResultPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockResultPublisher {
	m := &MockResultPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ResultPublisher = (*MockResultPublisher)(nil)
