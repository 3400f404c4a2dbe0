package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"persona-agent/shared/interfaces"
	"persona-agent/shared/models"
)

// MockResultRepository is a mock type for the GenerationResultRepository type
type MockResultRepository struct {
	mock.Mock
}

// GetByTaskID provides a mock function with given fields: ctx, taskID
func (_m *MockResultRepository) GetByTaskID(ctx context.Context, taskID string) (*models.GenerationResult, error) {
	ret := _m.Called(ctx, taskID)

	var r0 *models.GenerationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.GenerationResult)
	}
	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: ctx, result
func (_m *MockResultRepository) Save(ctx context.Context, result *models.GenerationResult) error {
	ret := _m.Called(ctx, result)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.GenerationResult) error); ok {
		r0 = rf(ctx, result)
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// ListRecent provides a mock function with given fields: ctx, limit
func (_m *MockResultRepository) ListRecent(ctx context.Context, limit int) ([]*models.GenerationResult, error) {
	ret := _m.Called(ctx, limit)

	var r0 []*models.GenerationResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.GenerationResult)
	}
	return r0, ret.Error(1)
}

// NewMockResultRepository creates a new instance of MockResultRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockResultRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockResultRepository {
	m := &MockResultRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.GenerationResultRepository = (*MockResultRepository)(nil)
