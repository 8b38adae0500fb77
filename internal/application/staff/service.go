package staff

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// Service handles staff record lookups backing routing and approver
// resolution.
type Service struct {
	repo   staff.Repository
	logger zerolog.Logger
}

// NewService creates a staff service.
func NewService(repo staff.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "staff").Logger(),
	}
}

// Create validates and stores a staff record.
func (s *Service) Create(ctx context.Context, st *staff.Staff) error {
	if err := staff.Validate(st); err != nil {
		return err
	}
	if st.StaffID == uuid.Nil {
		st.StaffID = uuid.New()
	}
	if st.Status == "" {
		st.Status = staff.StatusActive
	}
	return s.repo.Create(ctx, st)
}

// Get retrieves a staff member by id.
func (s *Service) Get(ctx context.Context, staffID uuid.UUID) (*staff.Staff, error) {
	return s.repo.GetByID(ctx, staffID)
}

// GetByStaffNumber retrieves a staff member by their staff number.
func (s *Service) GetByStaffNumber(ctx context.Context, staffNumber string) (*staff.Staff, error) {
	return s.repo.GetByStaffNumber(ctx, staffNumber)
}

// List returns staff matching the filter.
func (s *Service) List(ctx context.Context, filter staff.Filter, limit, offset int) ([]*staff.Staff, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, filter, limit, offset)
}
