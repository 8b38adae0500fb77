package delegation

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls delegation listing.
type Filter struct {
	RequestID   *uuid.UUID
	FromStaffID *uuid.UUID
	ToStaffID   *uuid.UUID
	Status      *Status
}

// Repository defines delegation request persistence.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, delegationID uuid.UUID) (*Request, error)
	Update(ctx context.Context, req *Request) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Request, error)
}
