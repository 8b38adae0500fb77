package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// Service handles workflow definition management.
type Service struct {
	repo   workflow.Repository
	logger zerolog.Logger
}

// NewService creates a workflow service.
func NewService(repo workflow.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "workflow").Logger(),
	}
}

// CreateDefinition validates and stores a new definition version. New
// definitions start inactive so routing never sees a half-configured
// template.
func (s *Service) CreateDefinition(ctx context.Context, def *workflow.Definition) (*workflow.Definition, error) {
	levels, err := workflow.ParseTemplate(def.Template)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateTemplate(levels); err != nil {
		return nil, err
	}
	if def.Name == "" {
		return nil, fmt.Errorf("workflow name is required")
	}

	if def.WorkflowID == uuid.Nil {
		def.WorkflowID = uuid.New()
	}
	if def.Version == 0 {
		existing, err := s.repo.GetByID(ctx, def.WorkflowID)
		if err == nil && existing != nil {
			def.Version = existing.Version + 1
		} else {
			def.Version = 1
		}
	}
	def.Status = workflow.StatusInactive
	def.CreatedAt = time.Now().UTC()
	def.UpdatedAt = def.CreatedAt

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	s.logger.Info().
		Str("workflowId", def.WorkflowID.String()).
		Str("name", def.Name).
		Int("version", def.Version).
		Msg("workflow definition created")
	return def, nil
}

// Get retrieves the latest version of a definition.
func (s *Service) Get(ctx context.Context, workflowID uuid.UUID) (*workflow.Definition, error) {
	return s.repo.GetByID(ctx, workflowID)
}

// List returns workflow definitions.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*workflow.Definition, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

// Activate makes a definition visible to routing.
func (s *Service) Activate(ctx context.Context, workflowID uuid.UUID, updatedBy *string) error {
	return s.repo.UpdateStatus(ctx, workflowID, workflow.StatusActive, updatedBy)
}

// Deactivate removes a definition from routing.
func (s *Service) Deactivate(ctx context.Context, workflowID uuid.UUID, updatedBy *string) error {
	return s.repo.UpdateStatus(ctx, workflowID, workflow.StatusInactive, updatedBy)
}
