package delegation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/mofad-hr/leave-portal/internal/application/audit"
	appLeave "github.com/mofad-hr/leave-portal/internal/application/leave"
	domainAudit "github.com/mofad-hr/leave-portal/internal/domain/audit"
	"github.com/mofad-hr/leave-portal/internal/domain/delegation"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// Service runs the delegation request lifecycle. A delegation is a
// request from the current approver of one level to another staff
// member; only acceptance touches the leave request's level list, and it
// does so through the leave service's version-guarded path.
type Service struct {
	delegationRepo delegation.Repository
	leaveSvc       *appLeave.Service
	staffRepo      staff.Repository
	auditSvc       *appAudit.Service
	hub            notification.SSEHub
	logger         zerolog.Logger
}

// NewService creates a delegation service.
func NewService(
	delegationRepo delegation.Repository,
	leaveSvc *appLeave.Service,
	staffRepo staff.Repository,
	auditSvc *appAudit.Service,
	hub notification.SSEHub,
	logger zerolog.Logger,
) *Service {
	return &Service{
		delegationRepo: delegationRepo,
		leaveSvc:       leaveSvc,
		staffRepo:      staffRepo,
		auditSvc:       auditSvc,
		hub:            hub,
		logger:         logger.With().Str("service", "delegation").Logger(),
	}
}

// Create opens a delegation request for one approval level. The actor
// must currently hold that level.
func (s *Service) Create(ctx context.Context, requestID uuid.UUID, ordinal int, actor appLeave.Actor, toStaffID uuid.UUID, reason *string) (*delegation.Request, error) {
	req, err := s.leaveSvc.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != leave.StatusPending {
		return nil, leave.ErrAlreadyDecided
	}
	if !holdsLevel(req, ordinal, actor) {
		return nil, leave.ErrNotAuthorized
	}

	to, err := s.staffRepo.GetByID(ctx, toStaffID)
	if err != nil {
		return nil, err
	}
	if to == nil {
		return nil, fmt.Errorf("delegate staff not found: %s", toStaffID)
	}

	dr, err := delegation.NewRequest(requestID, ordinal, actor.StaffID, toStaffID, to.FullName(), reason)
	if err != nil {
		return nil, err
	}
	if err := s.delegationRepo.Create(ctx, dr); err != nil {
		return nil, err
	}

	entry, _ := domainAudit.NewEntry(requestID, domainAudit.ActionDelegationCreated, actor.ActorString())
	if entry != nil {
		entry.WithLevel(ordinal)
		s.auditSvc.Record(ctx, entry)
	}
	s.hub.BroadcastToUser(toStaffID, notification.NewSSEMessage("delegation_requested", nil))
	return dr, nil
}

// Respond accepts or rejects a delegation request. Acceptance is the only
// path that flips the leave request level's approver linkage.
func (s *Service) Respond(ctx context.Context, delegationID uuid.UUID, actor appLeave.Actor, accept bool) (*delegation.Request, error) {
	dr, err := s.delegationRepo.GetByID(ctx, delegationID)
	if err != nil {
		return nil, err
	}
	if dr == nil {
		return nil, delegation.ErrNotFound
	}
	if dr.Status != delegation.StatusPending {
		return nil, delegation.ErrAlreadyDecided
	}
	if dr.ToStaffID != actor.StaffID {
		return nil, leave.ErrNotAuthorized
	}

	now := time.Now().UTC()
	dr.RespondedAt = &now
	if !accept {
		dr.Status = delegation.StatusRejected
		if err := s.delegationRepo.Update(ctx, dr); err != nil {
			return nil, err
		}
		entry, _ := domainAudit.NewEntry(dr.RequestID, domainAudit.ActionDelegationRejected, actor.ActorString())
		if entry != nil {
			entry.WithLevel(dr.Level)
			s.auditSvc.Record(ctx, entry)
		}
		s.hub.BroadcastToUser(dr.FromStaffID, notification.NewSSEMessage("delegation_rejected", nil))
		return dr, nil
	}

	if _, err := s.leaveSvc.ApplyDelegation(ctx, dr.RequestID, dr.Level, dr.FromStaffID, dr.ToStaffID, dr.ToStaffName); err != nil {
		return nil, err
	}
	dr.Status = delegation.StatusAccepted
	if err := s.delegationRepo.Update(ctx, dr); err != nil {
		return nil, err
	}
	entry, _ := domainAudit.NewEntry(dr.RequestID, domainAudit.ActionDelegationAccepted, actor.ActorString())
	if entry != nil {
		entry.WithLevel(dr.Level)
		s.auditSvc.Record(ctx, entry)
	}
	s.hub.BroadcastToUser(dr.FromStaffID, notification.NewSSEMessage("delegation_accepted", nil))
	return dr, nil
}

// Get retrieves a delegation request.
func (s *Service) Get(ctx context.Context, delegationID uuid.UUID) (*delegation.Request, error) {
	dr, err := s.delegationRepo.GetByID(ctx, delegationID)
	if err != nil {
		return nil, err
	}
	if dr == nil {
		return nil, delegation.ErrNotFound
	}
	return dr, nil
}

// List returns delegation requests matching the filter.
func (s *Service) List(ctx context.Context, filter delegation.Filter, limit, offset int) ([]*delegation.Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.delegationRepo.List(ctx, filter, limit, offset)
}

// holdsLevel reports whether the actor currently owns the given pending
// level of the request.
func holdsLevel(req *leave.Request, ordinal int, actor appLeave.Actor) bool {
	for _, l := range req.ApprovalLevels {
		if l.Level != ordinal || l.Status != workflow.LevelPending {
			continue
		}
		if l.ApproverID != nil {
			if *l.ApproverID == actor.StaffID {
				return true
			}
			continue
		}
		if l.ApproverRole == actor.Role {
			return true
		}
	}
	return false
}
