package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mofad-hr/leave-portal/internal/domain/delegation"
)

// MockRepository is a mock implementation of delegation.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *delegation.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, delegationID uuid.UUID) (*delegation.Request, error) {
	args := m.Called(ctx, delegationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delegation.Request), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, req *delegation.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter delegation.Filter, limit, offset int) ([]*delegation.Request, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*delegation.Request), args.Error(1)
}
