package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mofad-hr/leave-portal/internal/domain/leave"
)

// MockRepository is a mock implementation of leave.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *leave.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*leave.Request, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.Request), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter leave.Filter, limit, offset int) ([]*leave.Request, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leave.Request), args.Error(1)
}

func (m *MockRepository) ListPending(ctx context.Context, limit int) ([]*leave.Request, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leave.Request), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, req *leave.Request, expectedVersion int) error {
	args := m.Called(ctx, req, expectedVersion)
	return args.Error(0)
}

// MockBalanceRepository is a mock implementation of leave.BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Get(ctx context.Context, staffID uuid.UUID, leaveType leave.Type, year int) (*leave.Balance, error) {
	args := m.Called(ctx, staffID, leaveType, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leave.Balance), args.Error(1)
}

func (m *MockBalanceRepository) ListByStaff(ctx context.Context, staffID uuid.UUID, year int) ([]*leave.Balance, error) {
	args := m.Called(ctx, staffID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*leave.Balance), args.Error(1)
}

func (m *MockBalanceRepository) Upsert(ctx context.Context, balance *leave.Balance) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}
