package leave

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls leave request listing.
type Filter struct {
	StaffID   *uuid.UUID
	Status    *Status
	LeaveType *Type
	Unit      *string
}

// Repository defines leave request persistence. Update must compare the
// stored version against expectedVersion and return ErrVersionConflict on
// a stale write; on success the stored version is incremented.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Request, error)
	ListPending(ctx context.Context, limit int) ([]*Request, error)
	Update(ctx context.Context, req *Request, expectedVersion int) error
}

// BalanceRepository defines leave balance persistence.
type BalanceRepository interface {
	Get(ctx context.Context, staffID uuid.UUID, leaveType Type, year int) (*Balance, error)
	ListByStaff(ctx context.Context, staffID uuid.UUID, year int) ([]*Balance, error)
	Upsert(ctx context.Context, balance *Balance) error
}
