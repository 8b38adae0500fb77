package leave

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/workflow"
)

// Type represents a leave type.
type Type string

const (
	TypeAnnual        Type = "Annual"
	TypeSick          Type = "Sick"
	TypeMaternity     Type = "Maternity"
	TypePaternity     Type = "Paternity"
	TypeStudy         Type = "Study"
	TypeCompassionate Type = "Compassionate"
	TypeUnpaid        Type = "Unpaid"
)

// Status represents the lifecycle state of a leave request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var (
	ErrNotFound            = errors.New("leave request not found")
	ErrVersionConflict     = errors.New("leave request was modified concurrently")
	ErrAlreadyDecided      = errors.New("leave request is already decided")
	ErrNotAuthorized       = errors.New("actor is not authorized to act on this level")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// Request is a leave request with its embedded approval chain. Version
// guards concurrent mutation of the level list.
type Request struct {
	ID             int64                    `json:"id"`
	RequestID      uuid.UUID                `json:"requestId"`
	StaffID        uuid.UUID                `json:"staffId"`
	StaffName      string                   `json:"staffName"`
	Unit           string                   `json:"unit"`
	LeaveType      Type                     `json:"leaveType"`
	StartDate      time.Time                `json:"startDate"`
	EndDate        time.Time                `json:"endDate"`
	Days           int                      `json:"days"`
	Reason         string                   `json:"reason,omitempty"`
	Status         Status                   `json:"status"`
	WorkflowName   string                   `json:"workflowName"`
	ApprovalLevels []workflow.ApprovalLevel `json:"approvalLevels"`
	Version        int                      `json:"version"`
	SubmittedAt    time.Time                `json:"submittedAt"`
	DecidedAt      *time.Time               `json:"decidedAt,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// StatusFromWorkflow maps the aggregate approval status onto the request
// lifecycle.
func StatusFromWorkflow(s workflow.RequestStatus) Status {
	switch s {
	case workflow.RequestApproved:
		return StatusApproved
	case workflow.RequestRejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// ParseType normalizes and validates a leave type string.
func ParseType(raw string) (Type, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", errors.New("leave type is required")
	}
	t := Type(strings.ToUpper(trimmed[:1]) + trimmed[1:])
	switch t {
	case TypeAnnual, TypeSick, TypeMaternity, TypePaternity, TypeStudy, TypeCompassionate, TypeUnpaid:
		return t, nil
	default:
		return "", errors.New("unknown leave type: " + raw)
	}
}

// Validate checks a request before submission.
func Validate(r *Request) error {
	if r == nil {
		return errors.New("request is nil")
	}
	if r.StaffID == uuid.Nil {
		return errors.New("staff_id is required")
	}
	if _, err := ParseType(string(r.LeaveType)); err != nil {
		return err
	}
	if r.Days < 1 {
		return errors.New("days must be >= 1")
	}
	if r.EndDate.Before(r.StartDate) {
		return errors.New("end_date must not precede start_date")
	}
	return nil
}

// Balance tracks a staff member's entitlement for one leave type and year.
// Pending holds days reserved by in-flight requests.
type Balance struct {
	ID          int64     `json:"id"`
	StaffID     uuid.UUID `json:"staffId"`
	LeaveType   Type      `json:"leaveType"`
	Year        int       `json:"year"`
	Entitlement int       `json:"entitlement"`
	Used        int       `json:"used"`
	Pending     int       `json:"pending"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Available returns the days still open for new requests.
func (b *Balance) Available() int {
	return b.Entitlement - b.Used - b.Pending
}
