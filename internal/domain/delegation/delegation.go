package delegation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents a delegation request's lifecycle state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrNotFound       = errors.New("delegation request not found")
	ErrAlreadyDecided = errors.New("delegation request is already decided")
)

// Request asks another staff member to take over one approval level of a
// leave request. Acceptance flips the target level's approver linkage.
type Request struct {
	ID           int64      `json:"id"`
	DelegationID uuid.UUID  `json:"delegationId"`
	RequestID    uuid.UUID  `json:"requestId"`
	Level        int        `json:"level"`
	FromStaffID  uuid.UUID  `json:"fromStaffId"`
	ToStaffID    uuid.UUID  `json:"toStaffId"`
	ToStaffName  string     `json:"toStaffName"`
	Reason       *string    `json:"reason,omitempty"`
	Status       Status     `json:"status"`
	RequestedAt  time.Time  `json:"requestedAt"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty"`
}

// NewRequest builds a pending delegation request.
func NewRequest(requestID uuid.UUID, level int, from, to uuid.UUID, toName string, reason *string) (*Request, error) {
	if requestID == uuid.Nil || from == uuid.Nil || to == uuid.Nil {
		return nil, errors.New("request_id, from_staff_id and to_staff_id are required")
	}
	if from == to {
		return nil, errors.New("cannot delegate to self")
	}
	if level < 1 {
		return nil, errors.New("level must be >= 1")
	}
	return &Request{
		DelegationID: uuid.New(),
		RequestID:    requestID,
		Level:        level,
		FromStaffID:  from,
		ToStaffID:    to,
		ToStaffName:  toName,
		Reason:       reason,
		Status:       StatusPending,
		RequestedAt:  time.Now().UTC(),
	}, nil
}
