package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// MockRepository is a mock implementation of workflow.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, def *workflow.Definition) error {
	args := m.Called(ctx, def)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, workflowID uuid.UUID) (*workflow.Definition, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Definition), args.Error(1)
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*workflow.Definition, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Definition), args.Error(1)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]*workflow.Definition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Definition), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]*workflow.Definition, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Definition), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, workflowID uuid.UUID, status workflow.Status, updatedBy *string) error {
	args := m.Called(ctx, workflowID, status, updatedBy)
	return args.Error(0)
}
