package leave

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appAudit "github.com/mofad-hr/leave-portal/internal/application/audit"
	"github.com/mofad-hr/leave-portal/internal/application/routing"
	auditMocks "github.com/mofad-hr/leave-portal/internal/domain/audit/mocks"
	"github.com/mofad-hr/leave-portal/internal/domain/leave"
	leaveMocks "github.com/mofad-hr/leave-portal/internal/domain/leave/mocks"
	notificationMocks "github.com/mofad-hr/leave-portal/internal/domain/notification/mocks"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
	staffMocks "github.com/mofad-hr/leave-portal/internal/domain/staff/mocks"
	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
	workflowMocks "github.com/mofad-hr/leave-portal/internal/domain/workflow/mocks"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc          *Service
	leaveRepo    *leaveMocks.MockRepository
	balanceRepo  *leaveMocks.MockBalanceRepository
	staffRepo    *staffMocks.MockRepository
	workflowRepo *workflowMocks.MockRepository
	auditRepo    *auditMocks.MockRepository
	hub          *notificationMocks.MockSSEHub
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		leaveRepo:    new(leaveMocks.MockRepository),
		balanceRepo:  new(leaveMocks.MockBalanceRepository),
		staffRepo:    new(staffMocks.MockRepository),
		workflowRepo: new(workflowMocks.MockRepository),
		auditRepo:    new(auditMocks.MockRepository),
		hub:          notificationMocks.NewMockSSEHub(ctrl),
	}
	logger := zerolog.Nop()
	f.auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	auditSvc := appAudit.NewService(f.auditRepo, logger, nil)
	routingSvc := routing.NewService(f.workflowRepo, logger)
	f.svc = NewService(f.leaveRepo, f.balanceRepo, f.staffRepo, routingSvc, auditSvc, f.hub, logger).
		WithClock(func() time.Time { return fixedNow })
	return f
}

func requester(supervisorID *uuid.UUID) *staff.Staff {
	return &staff.Staff{
		StaffID:      uuid.New(),
		StaffNumber:  "MOF-0042",
		FirstName:    "Ama",
		LastName:     "Mensah",
		Role:         staff.RoleStaff,
		Unit:         "Finance",
		Grade:        7,
		SupervisorID: supervisorID,
		Status:       staff.StatusActive,
	}
}

func standardDefinition() *workflow.Definition {
	return &workflow.Definition{
		WorkflowID: uuid.New(),
		Name:       "Standard Staff Leave",
		Version:    1,
		Status:     workflow.StatusActive,
		Template: json.RawMessage(`[
			{"level": 1, "approverRole": "SUPERVISOR"},
			{"level": 2, "approverRole": "HR_OFFICER"}
		]`),
	}
}

func pendingRequest(staffID uuid.UUID, levels []workflow.ApprovalLevel) *leave.Request {
	return &leave.Request{
		RequestID:      uuid.New(),
		StaffID:        staffID,
		StaffName:      "Ama Mensah",
		Unit:           "Finance",
		LeaveType:      leave.TypeAnnual,
		StartDate:      time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:           5,
		Status:         leave.StatusPending,
		WorkflowName:   "Standard Staff Leave",
		ApprovalLevels: levels,
		Version:        1,
		SubmittedAt:    fixedNow.Add(-24 * time.Hour),
	}
}

func TestSubmit_BindsSupervisorAndReservesBalance(t *testing.T) {
	f := newFixture(t)
	supervisorID := uuid.New()
	st := requester(&supervisorID)
	sup := &staff.Staff{StaffID: supervisorID, StaffNumber: "MOF-0007", Role: staff.RoleSupervisor, Status: staff.StatusActive}

	f.staffRepo.On("GetByID", mock.Anything, st.StaffID).Return(st, nil)
	f.staffRepo.On("GetByID", mock.Anything, supervisorID).Return(sup, nil)
	f.workflowRepo.On("ListActive", mock.Anything).Return([]*workflow.Definition{standardDefinition()}, nil)
	f.balanceRepo.On("Get", mock.Anything, st.StaffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{StaffID: st.StaffID, LeaveType: leave.TypeAnnual, Year: 2026, Entitlement: 30}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *leave.Balance) bool {
		return b.Pending == 5
	})).Return(nil)
	f.leaveRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.hub.EXPECT().BroadcastToUser(supervisorID, gomock.Any())

	req, err := f.svc.Submit(context.Background(), st.StaffID, SubmitInput{
		LeaveType: "annual",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:      5,
		Reason:    "family visit",
	})
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, leave.StatusPending, req.Status)
	assert.Equal(t, 1, req.Version)
	assert.Equal(t, fixedNow, req.SubmittedAt)
	require.Len(t, req.ApprovalLevels, 2)
	require.NotNil(t, req.ApprovalLevels[0].ApproverID)
	assert.Equal(t, supervisorID, *req.ApprovalLevels[0].ApproverID)
	assert.Nil(t, req.ApprovalLevels[1].ApproverID)
	f.leaveRepo.AssertExpectations(t)
	f.balanceRepo.AssertExpectations(t)
}

func TestSubmit_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	st := requester(nil)

	f.staffRepo.On("GetByID", mock.Anything, st.StaffID).Return(st, nil)
	f.workflowRepo.On("ListActive", mock.Anything).Return([]*workflow.Definition{standardDefinition()}, nil)
	f.balanceRepo.On("Get", mock.Anything, st.StaffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 10, Used: 8}, nil)

	_, err := f.svc.Submit(context.Background(), st.StaffID, SubmitInput{
		LeaveType: "Annual",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:      5,
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	f.leaveRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_UnpaidLeaveSkipsBalance(t *testing.T) {
	f := newFixture(t)
	st := requester(nil)

	f.staffRepo.On("GetByID", mock.Anything, st.StaffID).Return(st, nil)
	f.workflowRepo.On("ListActive", mock.Anything).Return([]*workflow.Definition{standardDefinition()}, nil)
	f.leaveRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.hub.EXPECT().BroadcastToGroup(staff.RoleSupervisor, gomock.Any())

	_, err := f.svc.Submit(context.Background(), st.StaffID, SubmitInput{
		LeaveType: "Unpaid",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:      5,
	})
	require.NoError(t, err)
	f.balanceRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDecide_IntermediateApprovalKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.hub.EXPECT().BroadcastToGroup(staff.RoleHROfficer, gomock.Any())

	got, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, workflow.LevelApproved, got.ApprovalLevels[0].Status)
	require.NotNil(t, got.ApprovalLevels[0].ActionBy)
	assert.Equal(t, "staff:Kofi Boateng", *got.ApprovalLevels[0].ActionBy)
	assert.Nil(t, got.DecidedAt)
}

func TestDecide_FinalApprovalConsumesBalance(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelApproved},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Efua Owusu", Role: staff.RoleHROfficer}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *leave.Balance) bool {
		return b.Used == 5 && b.Pending == 0
	})).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	got, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	require.NotNil(t, got.DecidedAt)
	assert.Equal(t, fixedNow, *got.DecidedAt)
	f.balanceRepo.AssertExpectations(t)
}

func TestDecide_RejectionReleasesBalance(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})
	comment := "staffing gap that week"
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *leave.Balance) bool {
		return b.Pending == 0 && b.Used == 0
	})).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	got, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionReject, &comment)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, got.Status)
	assert.Equal(t, workflow.LevelRejected, got.ApprovalLevels[0].Status)
	require.NotNil(t, got.ApprovalLevels[0].Comments)
	assert.Equal(t, comment, *got.ApprovalLevels[0].Comments)
}

func TestDecide_WrongRoleNotAuthorized(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})
	// HR officer cannot act while the sequential level before it is open.
	actor := Actor{StaffID: uuid.New(), Name: "Efua Owusu", Role: staff.RoleHROfficer}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	_, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	assert.ErrorIs(t, err, leave.ErrNotAuthorized)
}

func TestDecide_BoundApproverExcludesOthersWithSameRole(t *testing.T) {
	f := newFixture(t)
	boundID := uuid.New()
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, ApproverID: &boundID, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Someone Else", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	_, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	assert.ErrorIs(t, err, leave.ErrNotAuthorized)
}

func TestDecide_AdminMayActOnAnyLevel(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	boundID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, ApproverID: &boundID, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Portal Admin", Role: staff.RoleAdmin}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	got, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
}

func TestDecide_AlreadyDecidedRequest(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelApproved},
	})
	req.Status = leave.StatusApproved
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	_, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	assert.ErrorIs(t, err, leave.ErrAlreadyDecided)
}

func TestDecide_VersionConflictSurfaces(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(leave.ErrVersionConflict)

	_, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	assert.ErrorIs(t, err, leave.ErrVersionConflict)
}

func TestDecide_VersionConflictLeavesBalanceUntouched(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(leave.ErrVersionConflict)

	_, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	assert.ErrorIs(t, err, leave.ErrVersionConflict)
	// The loser of the race must not consume any days.
	f.balanceRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.balanceRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCancel_RequesterOnly(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	_, err := f.svc.Cancel(context.Background(), req.RequestID, Actor{StaffID: uuid.New(), Name: "Intruder"})
	assert.ErrorIs(t, err, leave.ErrNotAuthorized)
}

func TestCancel_ReleasesReservedBalance(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *leave.Balance) bool {
		return b.Pending == 0
	})).Return(nil)

	got, err := f.svc.Cancel(context.Background(), req.RequestID, Actor{StaffID: staffID, Name: "Ama Mensah"})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusCancelled, got.Status)
	require.NotNil(t, got.DecidedAt)
}

func TestCancel_VersionConflictLeavesBalanceUntouched(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(leave.ErrVersionConflict)

	_, err := f.svc.Cancel(context.Background(), req.RequestID, Actor{StaffID: staffID, Name: "Ama Mensah"})
	assert.ErrorIs(t, err, leave.ErrVersionConflict)
	f.balanceRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestApplyDelegation_MarksLevelDelegated(t *testing.T) {
	f := newFixture(t)
	from := uuid.New()
	to := uuid.New()
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, ApproverID: &from, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.hub.EXPECT().BroadcastToUser(to, gomock.Any())

	got, err := f.svc.ApplyDelegation(context.Background(), req.RequestID, 1, from, to, "Yaw Darko")
	require.NoError(t, err)
	assert.Equal(t, workflow.LevelDelegated, got.ApprovalLevels[0].Status)
	require.NotNil(t, got.ApprovalLevels[0].DelegatedTo)
	assert.Equal(t, to, *got.ApprovalLevels[0].DelegatedTo)
}

func TestDecide_DelegateActsOnDelegatedLevel(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	original := uuid.New()
	delegate := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, ApproverID: &original, Status: workflow.LevelDelegated, DelegatedTo: &delegate},
	})
	actor := Actor{StaffID: delegate, Name: "Yaw Darko", Role: staff.RoleStaff}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	got, err := f.svc.Decide(context.Background(), req.RequestID, actor, DecisionApprove, nil)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
}

func TestEscalate_AutoApprove(t *testing.T) {
	f := newFixture(t)
	staffID := uuid.New()
	req := pendingRequest(staffID, []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	got, err := f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleHROfficer,
		workflow.EscalationDecision{ShouldEscalate: true, AutoApprove: true})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovalLevels[0].ActionBy)
	assert.Equal(t, "system:escalation", *got.ApprovalLevels[0].ActionBy)
}

func TestEscalate_ReassignsRole(t *testing.T) {
	f := newFixture(t)
	bound := uuid.New()
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, ApproverID: &bound, Status: workflow.LevelPending},
	})
	target := staff.RoleUnitHead

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.hub.EXPECT().BroadcastToGroup(staff.RoleUnitHead, gomock.Any())

	got, err := f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleSupervisor,
		workflow.EscalationDecision{ShouldEscalate: true, EscalateTo: &target})
	require.NoError(t, err)
	assert.Equal(t, staff.RoleUnitHead, got.ApprovalLevels[0].ApproverRole)
	assert.Nil(t, got.ApprovalLevels[0].ApproverID)
}

func TestEscalate_NotifyTierRecordsReminderOnce(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})
	decision := workflow.EscalationDecision{ShouldEscalate: true, Notify: true}

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil).Once()

	got, err := f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleSupervisor, decision)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ApprovalLevels[0].ReminderSentAt)
	assert.Equal(t, fixedNow, *got.ApprovalLevels[0].ReminderSentAt)

	// The next sweep finds the marker and leaves the request alone.
	got, err = f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleSupervisor, decision)
	require.NoError(t, err)
	assert.Nil(t, got)
	f.leaveRepo.AssertExpectations(t)
}

func TestEscalate_ReassignAlreadyAppliedIsNoOp(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleUnitHead, Status: workflow.LevelPending},
	})
	target := staff.RoleUnitHead

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	got, err := f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleUnitHead,
		workflow.EscalationDecision{ShouldEscalate: true, EscalateTo: &target})
	require.NoError(t, err)
	assert.Nil(t, got)
	f.leaveRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEscalate_DecidedLevelIsNoOp(t *testing.T) {
	f := newFixture(t)
	req := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelApproved},
		{Level: 2, ApproverRole: staff.RoleHROfficer, Status: workflow.LevelPending},
	})

	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	got, err := f.svc.Escalate(context.Background(), req.RequestID, 1, staff.RoleSupervisor,
		workflow.EscalationDecision{ShouldEscalate: true, AutoApprove: true})
	require.NoError(t, err)
	assert.Nil(t, got)
	f.leaveRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestPendingForApprover_FiltersByActionability(t *testing.T) {
	f := newFixture(t)
	mine := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending},
	})
	notMine := pendingRequest(uuid.New(), []workflow.ApprovalLevel{
		{Level: 1, ApproverRole: staff.RoleUnitHead, Status: workflow.LevelPending},
	})
	actor := Actor{StaffID: uuid.New(), Name: "Kofi Boateng", Role: staff.RoleSupervisor}

	f.leaveRepo.On("ListPending", mock.Anything, 500).
		Return([]*leave.Request{mine, notMine}, nil)

	out, err := f.svc.PendingForApprover(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, mine.RequestID, out[0].RequestID)
}
