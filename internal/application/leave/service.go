package leave

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/mofad-hr/leave-portal/internal/application/audit"
	"github.com/mofad-hr/leave-portal/internal/application/routing"
	domainAudit "github.com/mofad-hr/leave-portal/internal/domain/audit"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// Actor describes the staff member performing an operation.
type Actor struct {
	StaffID uuid.UUID
	Name    string
	Role    staff.Role
}

func (a Actor) ActorString() string {
	return "staff:" + a.Name
}

// Decision is an approver's verdict on a level.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// SubmitInput carries a new leave request.
type SubmitInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Reason    string
}

// Service owns the leave request lifecycle: submission, approval
// decisions, cancellation and the balance side effects. All mutations of
// a request's level list go through the repository's optimistic version
// guard.
type Service struct {
	leaveRepo   leave.Repository
	balanceRepo leave.BalanceRepository
	staffRepo   staff.Repository
	routingSvc  *routing.Service
	auditSvc    *appAudit.Service
	hub         notification.SSEHub
	now         func() time.Time
	logger      zerolog.Logger
}

// NewService creates a leave service.
func NewService(
	leaveRepo leave.Repository,
	balanceRepo leave.BalanceRepository,
	staffRepo staff.Repository,
	routingSvc *routing.Service,
	auditSvc *appAudit.Service,
	hub notification.SSEHub,
	logger zerolog.Logger,
) *Service {
	return &Service{
		leaveRepo:   leaveRepo,
		balanceRepo: balanceRepo,
		staffRepo:   staffRepo,
		routingSvc:  routingSvc,
		auditSvc:    auditSvc,
		hub:         hub,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger.With().Str("service", "leave").Logger(),
	}
}

// WithClock overrides the service clock. Used by tests and the
// escalation monitor.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit creates a leave request: resolves the workflow template for the
// staff member, filters it down to the applicable levels, reserves the
// balance and notifies the first approvers.
func (s *Service) Submit(ctx context.Context, staffID uuid.UUID, input SubmitInput) (*leave.Request, error) {
	st, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("staff not found: %s", staffID)
	}
	leaveType, err := leave.ParseType(input.LeaveType)
	if err != nil {
		return nil, err
	}

	def, err := s.routingSvc.Resolve(ctx, st, string(leaveType), input.Days)
	if err != nil {
		return nil, err
	}
	template, err := workflow.ParseTemplate(def.Template)
	if err != nil {
		return nil, fmt.Errorf("workflow %s has an invalid template: %w", def.Name, err)
	}

	grade := st.Grade
	data := workflow.LeaveData{
		Days:       input.Days,
		LeaveType:  string(leaveType),
		Department: &st.Unit,
		Grade:      &grade,
	}
	levels := workflow.RequiredApprovalLevels(template, data)
	s.bindApprovers(ctx, levels, st)

	now := s.now()
	req := &leave.Request{
		RequestID:      uuid.New(),
		StaffID:        st.StaffID,
		StaffName:      st.FullName(),
		Unit:           st.Unit,
		LeaveType:      leaveType,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Days:           input.Days,
		Reason:         input.Reason,
		Status:         leave.StatusPending,
		WorkflowName:   def.Name,
		ApprovalLevels: levels,
		Version:        1,
		SubmittedAt:    now,
	}
	if err := leave.Validate(req); err != nil {
		return nil, err
	}

	if err := s.reserveBalance(ctx, req); err != nil {
		return nil, err
	}
	if err := s.leaveRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionSubmitted, "staff:"+req.StaffName)
	if entry != nil {
		entry.WithTransition("", string(leave.StatusPending))
		s.auditSvc.Record(ctx, entry)
	}
	s.notifyNextApprovers(req)
	s.logger.Info().
		Str("requestId", req.RequestID.String()).
		Str("workflow", def.Name).
		Int("levels", len(levels)).
		Msg("leave request submitted")
	return req, nil
}

// Decide records one approve/reject decision on the level the actor is
// empowered to act on, recomputes the aggregate status and persists under
// the version guard.
func (s *Service) Decide(ctx context.Context, requestID uuid.UUID, actor Actor, decision Decision, comment *string) (*leave.Request, error) {
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, leave.ErrNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, leave.ErrAlreadyDecided
	}

	idx := s.actionableLevelFor(req, actor)
	if idx < 0 {
		return nil, leave.ErrNotAuthorized
	}

	previous := req.ApprovalLevels[idx].Status
	now := s.now()
	actorName := actor.ActorString()
	req.ApprovalLevels[idx].ActionBy = &actorName
	req.ApprovalLevels[idx].ActionDate = &now
	req.ApprovalLevels[idx].Comments = comment

	action := domainAudit.ActionApproved
	if decision == DecisionReject {
		req.ApprovalLevels[idx].Status = workflow.LevelRejected
		action = domainAudit.ActionRejected
	} else {
		req.ApprovalLevels[idx].Status = workflow.LevelApproved
	}

	if err := s.finalize(ctx, req, now); err != nil {
		return nil, err
	}

	entry, _ := domainAudit.NewEntry(req.RequestID, action, actorName)
	if entry != nil {
		entry.WithLevel(req.ApprovalLevels[idx].Level).
			WithTransition(string(previous), string(req.ApprovalLevels[idx].Status))
		if comment != nil {
			entry.WithComments(*comment)
		}
		s.auditSvc.Record(ctx, entry)
	}

	if req.Status == leave.StatusPending {
		s.notifyNextApprovers(req)
	} else {
		s.notifyRequester(req)
	}
	return req, nil
}

// Cancel withdraws a still-pending request and releases the reserved
// balance. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, requestID uuid.UUID, actor Actor) (*leave.Request, error) {
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, leave.ErrNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, leave.ErrAlreadyDecided
	}
	if req.StaffID != actor.StaffID {
		return nil, leave.ErrNotAuthorized
	}

	expected := req.Version
	req.Status = leave.StatusCancelled
	now := s.now()
	req.DecidedAt = &now
	if err := s.leaveRepo.Update(ctx, req, expected); err != nil {
		return nil, err
	}
	if err := s.releaseBalance(ctx, req); err != nil {
		return nil, err
	}

	entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionCancelled, actor.ActorString())
	if entry != nil {
		entry.WithTransition(string(leave.StatusPending), string(leave.StatusCancelled))
		s.auditSvc.Record(ctx, entry)
	}
	return req, nil
}

// Escalate applies an escalation decision to one pending level. A level
// already decided in the interim is a safe no-op.
func (s *Service) Escalate(ctx context.Context, requestID uuid.UUID, ordinal int, role staff.Role, d workflow.EscalationDecision) (*leave.Request, error) {
	if !d.ShouldEscalate {
		return nil, nil
	}
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, leave.ErrNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, nil
	}

	idx := -1
	for i, l := range req.ApprovalLevels {
		if l.Level == ordinal && l.ApproverRole == role && l.Status == workflow.LevelPending {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}

	now := s.now()
	system := "system:escalation"
	switch {
	case d.AutoApprove:
		previous := req.ApprovalLevels[idx].Status
		req.ApprovalLevels[idx].Status = workflow.LevelApproved
		req.ApprovalLevels[idx].ActionBy = &system
		req.ApprovalLevels[idx].ActionDate = &now
		if err := s.finalize(ctx, req, now); err != nil {
			return nil, err
		}
		entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionAutoApproved, system)
		if entry != nil {
			entry.WithLevel(ordinal).WithTransition(string(previous), string(workflow.LevelApproved))
			s.auditSvc.Record(ctx, entry)
		}
		if req.Status == leave.StatusPending {
			s.notifyNextApprovers(req)
		} else {
			s.notifyRequester(req)
		}
	case d.EscalateTo != nil:
		// Already reassigned on an earlier sweep.
		if req.ApprovalLevels[idx].ApproverRole == *d.EscalateTo && req.ApprovalLevels[idx].ApproverID == nil {
			return nil, nil
		}
		expected := req.Version
		req.ApprovalLevels[idx].ApproverRole = *d.EscalateTo
		req.ApprovalLevels[idx].ApproverID = nil
		req.ApprovalLevels[idx].ApproverStaffID = nil
		if err := s.leaveRepo.Update(ctx, req, expected); err != nil {
			return nil, err
		}
		entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionReassigned, system)
		if entry != nil {
			metadata, _ := json.Marshal(map[string]string{"escalatedTo": string(*d.EscalateTo)})
			entry.WithLevel(ordinal).WithMetadata(metadata)
			s.auditSvc.Record(ctx, entry)
		}
		s.notifyNextApprovers(req)
	default:
		// Notify-only tier: remind once per level, recorded so repeat
		// sweeps do not flood the audit trail.
		if req.ApprovalLevels[idx].ReminderSentAt != nil {
			return nil, nil
		}
		expected := req.Version
		req.ApprovalLevels[idx].ReminderSentAt = &now
		if err := s.leaveRepo.Update(ctx, req, expected); err != nil {
			return nil, err
		}
		entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionEscalated, system)
		if entry != nil {
			entry.WithLevel(ordinal)
			s.auditSvc.Record(ctx, entry)
		}
	}
	return req, nil
}

// ApplyDelegation marks a level delegated to another staff member. Called
// by the delegation service once the delegate accepts.
func (s *Service) ApplyDelegation(ctx context.Context, requestID uuid.UUID, ordinal int, from, to uuid.UUID, toName string) (*leave.Request, error) {
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, leave.ErrNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, leave.ErrAlreadyDecided
	}

	idx := -1
	for i, l := range req.ApprovalLevels {
		if l.Level != ordinal || l.Status != workflow.LevelPending {
			continue
		}
		if l.ApproverID != nil && *l.ApproverID != from {
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		return nil, leave.ErrNotAuthorized
	}

	expected := req.Version
	now := s.now()
	req.ApprovalLevels[idx].Status = workflow.LevelDelegated
	req.ApprovalLevels[idx].DelegatedTo = &to
	req.ApprovalLevels[idx].DelegatedToName = &toName
	req.ApprovalLevels[idx].DelegationDate = &now
	if err := s.leaveRepo.Update(ctx, req, expected); err != nil {
		return nil, err
	}

	entry, _ := domainAudit.NewEntry(req.RequestID, domainAudit.ActionDelegated, "staff:"+toName)
	if entry != nil {
		entry.WithLevel(ordinal).
			WithTransition(string(workflow.LevelPending), string(workflow.LevelDelegated))
		s.auditSvc.Record(ctx, entry)
	}
	s.notifyUser(to, "delegation", req)
	return req, nil
}

// Get retrieves a leave request.
func (s *Service) Get(ctx context.Context, requestID uuid.UUID) (*leave.Request, error) {
	req, err := s.leaveRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, leave.ErrNotFound
	}
	return req, nil
}

// List returns leave requests matching the filter.
func (s *Service) List(ctx context.Context, filter leave.Filter, limit, offset int) ([]*leave.Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.leaveRepo.List(ctx, filter, limit, offset)
}

// PendingForApprover returns the requests the actor can currently act on.
func (s *Service) PendingForApprover(ctx context.Context, actor Actor) ([]*leave.Request, error) {
	pending, err := s.leaveRepo.ListPending(ctx, 500)
	if err != nil {
		return nil, err
	}
	var out []*leave.Request
	for _, req := range pending {
		if s.actionableLevelFor(req, actor) >= 0 {
			out = append(out, req)
		}
	}
	return out, nil
}

// Balances returns the actor's balances for a year.
func (s *Service) Balances(ctx context.Context, staffID uuid.UUID, year int) ([]*leave.Balance, error) {
	return s.balanceRepo.ListByStaff(ctx, staffID, year)
}

// actionableLevelFor returns the index of the level the actor may decide,
// or -1. Only levels the engine marks actionable count; an admin may act
// on any of them.
func (s *Service) actionableLevelFor(req *leave.Request, actor Actor) int {
	for _, next := range workflow.NextApprovers(req.ApprovalLevels) {
		if !levelMatchesActor(next, actor) {
			continue
		}
		for i, l := range req.ApprovalLevels {
			if l.Level == next.Level && l.ApproverRole == next.ApproverRole && l.IsActionable() {
				return i
			}
		}
	}
	return -1
}

func levelMatchesActor(l workflow.ApprovalLevel, actor Actor) bool {
	if l.Status == workflow.LevelDelegated {
		return l.DelegatedTo != nil && *l.DelegatedTo == actor.StaffID
	}
	if actor.Role == staff.RoleAdmin {
		return true
	}
	if l.ApproverID != nil {
		return *l.ApproverID == actor.StaffID
	}
	return l.ApproverRole == actor.Role
}

// bindApprovers narrows role-based levels to specific staff where the
// staff record names one, e.g. the requester's supervisor.
func (s *Service) bindApprovers(ctx context.Context, levels []workflow.ApprovalLevel, st *staff.Staff) {
	for i := range levels {
		if levels[i].ApproverRole == staff.RoleSupervisor && st.SupervisorID != nil {
			id := *st.SupervisorID
			levels[i].ApproverID = &id
			if sup, err := s.staffRepo.GetByID(ctx, id); err == nil && sup != nil {
				num := sup.StaffNumber
				levels[i].ApproverStaffID = &num
			}
		}
	}
}

// finalize recomputes the aggregate status, persists under the version
// guard and only then applies balance side effects for terminal
// outcomes. The loser of a concurrent decision must never touch the
// balance.
func (s *Service) finalize(ctx context.Context, req *leave.Request, now time.Time) error {
	expected := req.Version
	overall := workflow.CalculateApprovalStatus(req.ApprovalLevels)
	req.Status = leave.StatusFromWorkflow(overall)
	if req.Status == leave.StatusApproved || req.Status == leave.StatusRejected {
		req.DecidedAt = &now
	}
	if err := s.leaveRepo.Update(ctx, req, expected); err != nil {
		return err
	}
	switch req.Status {
	case leave.StatusApproved:
		return s.consumeBalance(ctx, req)
	case leave.StatusRejected:
		return s.releaseBalance(ctx, req)
	}
	return nil
}

// reserveBalance holds the requested days as pending. Unpaid leave does
// not draw on an entitlement.
func (s *Service) reserveBalance(ctx context.Context, req *leave.Request) error {
	if req.LeaveType == leave.TypeUnpaid {
		return nil
	}
	bal, err := s.balanceRepo.Get(ctx, req.StaffID, req.LeaveType, req.StartDate.Year())
	if err != nil {
		return err
	}
	if bal == nil || bal.Available() < req.Days {
		return leave.ErrInsufficientBalance
	}
	bal.Pending += req.Days
	return s.balanceRepo.Upsert(ctx, bal)
}

func (s *Service) consumeBalance(ctx context.Context, req *leave.Request) error {
	if req.LeaveType == leave.TypeUnpaid {
		return nil
	}
	bal, err := s.balanceRepo.Get(ctx, req.StaffID, req.LeaveType, req.StartDate.Year())
	if err != nil {
		return err
	}
	if bal == nil {
		return leave.ErrInsufficientBalance
	}
	bal.Pending -= req.Days
	if bal.Pending < 0 {
		bal.Pending = 0
	}
	bal.Used += req.Days
	return s.balanceRepo.Upsert(ctx, bal)
}

func (s *Service) releaseBalance(ctx context.Context, req *leave.Request) error {
	if req.LeaveType == leave.TypeUnpaid {
		return nil
	}
	bal, err := s.balanceRepo.Get(ctx, req.StaffID, req.LeaveType, req.StartDate.Year())
	if err != nil {
		return err
	}
	if bal == nil {
		return nil
	}
	bal.Pending -= req.Days
	if bal.Pending < 0 {
		bal.Pending = 0
	}
	return s.balanceRepo.Upsert(ctx, bal)
}

func (s *Service) notifyNextApprovers(req *leave.Request) {
	payload := s.requestPayload(req)
	msg := notification.NewSSEMessage("approval_required", payload)
	for _, l := range workflow.NextApprovers(req.ApprovalLevels) {
		switch {
		case l.Status == workflow.LevelDelegated && l.DelegatedTo != nil:
			s.hub.BroadcastToUser(*l.DelegatedTo, msg)
		case l.ApproverID != nil:
			s.hub.BroadcastToUser(*l.ApproverID, msg)
		default:
			s.hub.BroadcastToGroup(l.ApproverRole, msg)
		}
	}
}

func (s *Service) notifyRequester(req *leave.Request) {
	msg := notification.NewSSEMessage("request_decided", s.requestPayload(req))
	s.hub.BroadcastToUser(req.StaffID, msg)
}

func (s *Service) notifyUser(staffID uuid.UUID, event string, req *leave.Request) {
	msg := notification.NewSSEMessage(event, s.requestPayload(req))
	s.hub.BroadcastToUser(staffID, msg)
}

func (s *Service) requestPayload(req *leave.Request) json.RawMessage {
	payload, err := json.Marshal(map[string]interface{}{
		"requestId":   req.RequestID.String(),
		"staffName":   req.StaffName,
		"leaveType":   req.LeaveType,
		"days":        req.Days,
		"status":      req.Status,
		"workflow":    req.WorkflowName,
		"submittedAt": req.SubmittedAt.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal notification payload")
		return nil
	}
	return payload
}
