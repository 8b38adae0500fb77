package escalation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appAudit "github.com/mofad-hr/leave-portal/internal/application/audit"
	appLeave "github.com/mofad-hr/leave-portal/internal/application/leave"
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

var sweepTime = time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc         *Service
	leaveRepo   *leaveMocks.MockRepository
	balanceRepo *leaveMocks.MockBalanceRepository
	hub         *notificationMocks.MockSSEHub
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	logger := zerolog.Nop()

	f := &fixture{
		leaveRepo:   new(leaveMocks.MockRepository),
		balanceRepo: new(leaveMocks.MockBalanceRepository),
		hub:         notificationMocks.NewMockSSEHub(ctrl),
	}
	auditRepo := new(auditMocks.MockRepository)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()
	auditSvc := appAudit.NewService(auditRepo, logger, nil)
	routingSvc := routing.NewService(new(workflowMocks.MockRepository), logger)
	leaveSvc := appLeave.NewService(f.leaveRepo, f.balanceRepo, new(staffMocks.MockRepository), routingSvc, auditSvc, f.hub, logger).
		WithClock(func() time.Time { return sweepTime })

	f.svc = NewService(f.leaveRepo, leaveSvc, f.hub, logger).
		WithClock(func() time.Time { return sweepTime })
	return f
}

func overdueRequest(submittedAt time.Time, rules []workflow.EscalationRule) *leave.Request {
	return &leave.Request{
		RequestID: uuid.New(),
		StaffID:   uuid.New(),
		StaffName: "Ama Mensah",
		LeaveType: leave.TypeAnnual,
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:      5,
		Status:    leave.StatusPending,
		ApprovalLevels: []workflow.ApprovalLevel{
			{Level: 1, ApproverRole: staff.RoleSupervisor, Status: workflow.LevelPending, EscalationRules: rules},
		},
		Version:     1,
		SubmittedAt: submittedAt,
	}
}

func TestRun_NotifyTierSendsReminder(t *testing.T) {
	f := newFixture(t)
	req := overdueRequest(sweepTime.Add(-30*time.Hour), []workflow.EscalationRule{
		{TriggerAfterHours: 24, Notify: true},
	})

	f.leaveRepo.On("ListPending", mock.Anything, 100).Return([]*leave.Request{req}, nil)
	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.hub.EXPECT().BroadcastToGroup(staff.RoleSupervisor, gomock.Any())

	n, err := f.svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	// The reminder is recorded on the level so it fires once.
	require.NotNil(t, req.ApprovalLevels[0].ReminderSentAt)
	assert.Equal(t, sweepTime, *req.ApprovalLevels[0].ReminderSentAt)
}

func TestRun_NotifyTierRemindsOnlyOnce(t *testing.T) {
	f := newFixture(t)
	req := overdueRequest(sweepTime.Add(-30*time.Hour), []workflow.EscalationRule{
		{TriggerAfterHours: 24, Notify: true},
	})
	sent := sweepTime.Add(-2 * time.Hour)
	req.ApprovalLevels[0].ReminderSentAt = &sent

	f.leaveRepo.On("ListPending", mock.Anything, 100).Return([]*leave.Request{req}, nil)
	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)

	n, err := f.svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	f.leaveRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_ReassignTierMovesLevelToTargetRole(t *testing.T) {
	f := newFixture(t)
	req := overdueRequest(sweepTime.Add(-80*time.Hour), []workflow.EscalationRule{
		{TriggerAfterHours: 24, Notify: true},
		{TriggerAfterHours: 72, EscalateTo: rolePtr(staff.RoleUnitHead)},
	})

	f.leaveRepo.On("ListPending", mock.Anything, 100).Return([]*leave.Request{req}, nil)
	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.hub.EXPECT().BroadcastToGroup(staff.RoleUnitHead, gomock.Any())

	n, err := f.svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, staff.RoleUnitHead, req.ApprovalLevels[0].ApproverRole)
}

func TestRun_AutoApproveTierFinalizesRequest(t *testing.T) {
	f := newFixture(t)
	req := overdueRequest(sweepTime.Add(-130*time.Hour), []workflow.EscalationRule{
		{TriggerAfterHours: 48, Notify: true},
		{TriggerAfterHours: 120, AutoApprove: true},
	})
	staffID := req.StaffID

	f.leaveRepo.On("ListPending", mock.Anything, 100).Return([]*leave.Request{req}, nil)
	f.leaveRepo.On("GetByID", mock.Anything, req.RequestID).Return(req, nil)
	f.leaveRepo.On("Update", mock.Anything, req, 1).Return(nil)
	f.balanceRepo.On("Get", mock.Anything, staffID, leave.TypeAnnual, 2026).
		Return(&leave.Balance{Entitlement: 30, Pending: 5}, nil)
	f.balanceRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(b *leave.Balance) bool {
		return b.Used == 5 && b.Pending == 0
	})).Return(nil)
	f.hub.EXPECT().BroadcastToUser(staffID, gomock.Any())

	n, err := f.svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, leave.StatusApproved, req.Status)
}

func TestRun_NothingDueYet(t *testing.T) {
	f := newFixture(t)
	req := overdueRequest(sweepTime.Add(-10*time.Hour), []workflow.EscalationRule{
		{TriggerAfterHours: 24, Notify: true},
	})

	f.leaveRepo.On("ListPending", mock.Anything, 100).Return([]*leave.Request{req}, nil)

	n, err := f.svc.Run(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	f.leaveRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func rolePtr(r staff.Role) *staff.Role { return &r }
