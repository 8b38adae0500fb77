package routing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// ErrNoTemplate is returned when no active workflow definition applies to
// the staff member and no default exists.
var ErrNoTemplate = errors.New("no workflow template applies")

// Service selects the workflow definition for a leave request. Active
// definitions are tried highest priority first; the first whose
// applies_when expression holds wins, otherwise the default (empty
// applies_when) template.
type Service struct {
	workflowRepo workflow.Repository
	logger       zerolog.Logger
}

// NewService creates a routing service.
func NewService(workflowRepo workflow.Repository, logger zerolog.Logger) *Service {
	return &Service{
		workflowRepo: workflowRepo,
		logger:       logger.With().Str("service", "routing").Logger(),
	}
}

// Resolve returns the definition whose routing rule matches the staff
// member and request attributes.
func (s *Service) Resolve(ctx context.Context, st *staff.Staff, leaveType string, days int) (*workflow.Definition, error) {
	defs, err := s.workflowRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]*workflow.Definition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	params := Context(st, leaveType, days)
	var fallback *workflow.Definition
	for _, def := range sorted {
		if strings.TrimSpace(def.AppliesWhen) == "" {
			if fallback == nil {
				fallback = def
			}
			continue
		}
		ok, err := EvaluateExpression(def.AppliesWhen, params)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("workflow", def.Name).
				Msg("applies_when evaluation failed, skipping definition")
			continue
		}
		if ok {
			return def, nil
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, ErrNoTemplate
}
