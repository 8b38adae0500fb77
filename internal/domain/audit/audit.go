package audit

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Action identifies the state-changing event an entry records.
type Action string

const (
	ActionSubmitted          Action = "SUBMITTED"
	ActionApproved           Action = "APPROVED"
	ActionRejected           Action = "REJECTED"
	ActionCancelled          Action = "CANCELLED"
	ActionDelegated          Action = "DELEGATED"
	ActionEscalated          Action = "ESCALATED"
	ActionAutoApproved       Action = "AUTO_APPROVED"
	ActionReassigned         Action = "REASSIGNED"
	ActionDelegationCreated  Action = "DELEGATION_CREATED"
	ActionDelegationAccepted Action = "DELEGATION_ACCEPTED"
	ActionDelegationRejected Action = "DELEGATION_REJECTED"
	ActionBalanceAdjusted    Action = "BALANCE_ADJUSTED"
)

// Entry is one append-only approval-history record. Entries are never
// mutated or deleted.
type Entry struct {
	ID             int64           `json:"id"`
	EntryID        uuid.UUID       `json:"entryId"`
	RequestID      uuid.UUID       `json:"requestId"`
	Action         Action          `json:"action"`
	PerformedBy    string          `json:"performedBy"`
	PerformedAt    time.Time       `json:"performedAt"`
	Level          *int            `json:"level,omitempty"`
	Comments       *string         `json:"comments,omitempty"`
	PreviousStatus *string         `json:"previousStatus,omitempty"`
	NewStatus      *string         `json:"newStatus,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Signature      []byte          `json:"signature,omitempty"`
}

// NewEntry builds a history entry with identity and timestamp assigned.
func NewEntry(requestID uuid.UUID, action Action, performedBy string) (*Entry, error) {
	if requestID == uuid.Nil {
		return nil, errors.New("request_id is required")
	}
	if performedBy == "" {
		return nil, errors.New("performed_by is required")
	}
	return &Entry{
		EntryID:     uuid.New(),
		RequestID:   requestID,
		Action:      action,
		PerformedBy: performedBy,
		PerformedAt: time.Now().UTC(),
	}, nil
}

func (e *Entry) WithLevel(level int) *Entry {
	e.Level = &level
	return e
}

func (e *Entry) WithComments(comments string) *Entry {
	e.Comments = &comments
	return e
}

func (e *Entry) WithTransition(previous, next string) *Entry {
	e.PreviousStatus = &previous
	e.NewStatus = &next
	return e
}

func (e *Entry) WithMetadata(metadata json.RawMessage) *Entry {
	e.Metadata = metadata
	return e
}
