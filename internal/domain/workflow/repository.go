package workflow

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines workflow definition persistence.
type Repository interface {
	Create(ctx context.Context, def *Definition) error
	GetByID(ctx context.Context, workflowID uuid.UUID) (*Definition, error)
	GetByName(ctx context.Context, name string) (*Definition, error)
	ListActive(ctx context.Context) ([]*Definition, error)
	List(ctx context.Context, limit, offset int) ([]*Definition, error)
	UpdateStatus(ctx context.Context, workflowID uuid.UUID, status Status, updatedBy *string) error
}
