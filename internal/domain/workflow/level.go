package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// LevelStatus represents the state of a single approval level.
type LevelStatus string

const (
	LevelPending   LevelStatus = "PENDING"
	LevelApproved  LevelStatus = "APPROVED"
	LevelRejected  LevelStatus = "REJECTED"
	LevelDelegated LevelStatus = "DELEGATED"
)

// RequestStatus is the aggregate status of a leave request's approval chain.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ConditionType identifies the request attribute a condition tests.
type ConditionType string

const (
	ConditionDays       ConditionType = "days"
	ConditionLeaveType  ConditionType = "leaveType"
	ConditionDepartment ConditionType = "department"
	ConditionGrade      ConditionType = "grade"
	ConditionAmount     ConditionType = "amount"
)

// Operator is the comparison applied by a condition.
type Operator string

const (
	OpGT    Operator = "gt"
	OpGTE   Operator = "gte"
	OpLT    Operator = "lt"
	OpLTE   Operator = "lte"
	OpEQ    Operator = "eq"
	OpIn    Operator = "in"
	OpNotIn Operator = "notIn"
)

// Condition is one activation condition on an optional approval level.
// Conditions attached to a level are AND-combined.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator"`
	Value    interface{}   `json:"value"`
}

// EscalationRule fires when a level has been pending longer than
// TriggerAfterHours. Rules are evaluated largest threshold first so only
// the furthest-overdue tier acts.
type EscalationRule struct {
	TriggerAfterHours int         `json:"triggerAfterHours"`
	EscalateTo        *staff.Role `json:"escalateTo,omitempty"`
	Notify            bool        `json:"notify,omitempty"`
	AutoApprove       bool        `json:"autoApprove,omitempty"`
}

// ApprovalLevel is one stage of a leave request's approval chain. Levels
// sharing an ordinal with Parallel set form a cohort that must approve
// jointly.
type ApprovalLevel struct {
	Level           int              `json:"level"`
	ApproverRole    staff.Role       `json:"approverRole"`
	ApproverID      *uuid.UUID       `json:"approverId,omitempty"`
	ApproverStaffID *string          `json:"approverStaffId,omitempty"`
	Status          LevelStatus      `json:"status"`
	Comments        *string          `json:"comments,omitempty"`
	ActionBy        *string          `json:"actionBy,omitempty"`
	ActionDate      *time.Time       `json:"actionDate,omitempty"`
	DelegatedTo     *uuid.UUID       `json:"delegatedTo,omitempty"`
	DelegatedToName *string          `json:"delegatedToName,omitempty"`
	DelegationDate  *time.Time       `json:"delegationDate,omitempty"`
	Parallel        bool             `json:"parallel,omitempty"`
	ReminderSentAt  *time.Time       `json:"reminderSentAt,omitempty"`
	Required        *bool            `json:"required,omitempty"`
	Conditions      []Condition      `json:"conditions,omitempty"`
	EscalationRules []EscalationRule `json:"escalationRules,omitempty"`
}

// IsRequired reports whether the level must be decided. A nil Required is
// treated as required.
func (l ApprovalLevel) IsRequired() bool {
	return l.Required == nil || *l.Required
}

// IsActionable reports whether the level still awaits a decision. A
// delegated level remains actionable; the delegate's outcome is attributed
// back to it.
func (l ApprovalLevel) IsActionable() bool {
	return l.Status == LevelPending || l.Status == LevelDelegated
}

// IsDecided reports whether the level reached a terminal state.
func (l ApprovalLevel) IsDecided() bool {
	return l.Status == LevelApproved || l.Status == LevelRejected
}

// LeaveData carries the request attributes conditions are evaluated
// against. Department, Grade and Amount are optional; a condition on an
// absent field evaluates false.
type LeaveData struct {
	Days       int
	LeaveType  string
	Department *string
	Grade      *float64
	Amount     *float64
}

// EscalationDecision is the outcome of checking a level's escalation rules.
type EscalationDecision struct {
	ShouldEscalate bool
	EscalateTo     *staff.Role
	Notify         bool
	AutoApprove    bool
}
