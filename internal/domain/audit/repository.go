package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter controls history listing.
type Filter struct {
	RequestID   *uuid.UUID
	Action      *Action
	PerformedBy *string
	Since       *time.Time
	Until       *time.Time
}

// Repository defines append-only history persistence. There is no update
// or delete.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Entry, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Entry, error)
}
