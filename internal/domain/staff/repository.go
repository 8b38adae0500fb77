package staff

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls staff listing.
type Filter struct {
	Role        *Role
	Unit        *string
	Directorate *string
	Status      *Status
}

// Repository defines staff persistence.
type Repository interface {
	Create(ctx context.Context, s *Staff) error
	Update(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, staffID uuid.UUID) (*Staff, error)
	GetByStaffNumber(ctx context.Context, staffNumber string) (*Staff, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Staff, error)
}
