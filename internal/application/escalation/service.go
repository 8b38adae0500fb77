package escalation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	appLeave "github.com/mofad-hr/leave-portal/internal/application/leave"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// Service is the periodic escalation monitor. Each run scans pending
// requests, asks the engine whether any actionable level is overdue and
// applies the decided action through the leave service. A level decided
// by a human between the check and the write is a no-op there.
type Service struct {
	leaveRepo leave.Repository
	leaveSvc  *appLeave.Service
	hub       notification.SSEHub
	now       func() time.Time
	logger    zerolog.Logger
}

// NewService creates an escalation monitor.
func NewService(leaveRepo leave.Repository, leaveSvc *appLeave.Service, hub notification.SSEHub, logger zerolog.Logger) *Service {
	return &Service{
		leaveRepo: leaveRepo,
		leaveSvc:  leaveSvc,
		hub:       hub,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With().Str("service", "escalation").Logger(),
	}
}

// WithClock overrides the monitor clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Run performs one escalation sweep and returns the number of levels
// escalated.
func (s *Service) Run(ctx context.Context, limit int) (int, error) {
	pending, err := s.leaveRepo.ListPending(ctx, limit)
	if err != nil {
		return 0, err
	}
	now := s.now()
	escalated := 0
	for _, req := range pending {
		for _, l := range workflow.NextApprovers(req.ApprovalLevels) {
			if l.Status != workflow.LevelPending {
				continue
			}
			decision := workflow.CheckEscalation(l, req.SubmittedAt, now)
			if !decision.ShouldEscalate {
				continue
			}
			applied, err := s.leaveSvc.Escalate(ctx, req.RequestID, l.Level, l.ApproverRole, decision)
			if err != nil {
				s.logger.Error().Err(err).
					Str("requestId", req.RequestID.String()).
					Int("level", l.Level).
					Msg("failed to apply escalation")
				continue
			}
			if applied == nil {
				// The level was decided or already escalated in the interim.
				continue
			}
			if decision.Notify {
				s.sendReminder(req, l, decision)
			}
			escalated++
			s.logger.Info().
				Str("requestId", req.RequestID.String()).
				Int("level", l.Level).
				Bool("autoApprove", decision.AutoApprove).
				Msg("level escalated")
		}
	}
	return escalated, nil
}

// sendReminder pushes an overdue notice to whoever should now act: the
// escalation target role when one is named, otherwise the level's own
// approver.
func (s *Service) sendReminder(req *leave.Request, l workflow.ApprovalLevel, d workflow.EscalationDecision) {
	payload, err := json.Marshal(map[string]interface{}{
		"requestId": req.RequestID.String(),
		"staffName": req.StaffName,
		"leaveType": req.LeaveType,
		"level":     l.Level,
		"pendingSince": req.SubmittedAt.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal escalation payload")
		return
	}
	msg := notification.NewSSEMessage("approval_overdue", payload)
	switch {
	case d.EscalateTo != nil:
		s.hub.BroadcastToGroup(*d.EscalateTo, msg)
	case l.ApproverID != nil:
		s.hub.BroadcastToUser(*l.ApproverID, msg)
	default:
		s.hub.BroadcastToGroup(l.ApproverRole, msg)
	}
}
