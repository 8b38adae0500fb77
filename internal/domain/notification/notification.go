package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

var (
	ErrClientNotFound = errors.New("sse client not found")
	ErrChannelFull    = errors.New("sse client channel is full")
)

// SSEMessage is one event pushed to connected portal clients.
type SSEMessage struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Retry     *int            `json:"retry,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewSSEMessage creates an SSE message with identity and timestamp set.
func NewSSEMessage(event string, data json.RawMessage) *SSEMessage {
	return &SSEMessage{
		ID:        uuid.New().String(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// SSEClient represents an active SSE connection. StaffID is the staff
// member the connection belongs to; Roles carries their portal roles so
// approvers can be addressed collectively.
type SSEClient struct {
	ClientID    string
	StaffID     uuid.UUID
	Roles       []staff.Role
	ConnectedAt time.Time
	MessageChan chan *SSEMessage

	closeOnce sync.Once
}

// NewSSEClient creates a new SSE client with a buffered message channel.
func NewSSEClient(clientID string, staffID uuid.UUID, roles []staff.Role) *SSEClient {
	return &SSEClient{
		ClientID:    clientID,
		StaffID:     staffID,
		Roles:       roles,
		ConnectedAt: time.Now().UTC(),
		MessageChan: make(chan *SSEMessage, 100),
	}
}

// HasRole reports whether the connection belongs to a holder of the role.
func (c *SSEClient) HasRole(role staff.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Close releases the client's channel. Safe to call more than once.
func (c *SSEClient) Close() {
	c.closeOnce.Do(func() {
		close(c.MessageChan)
	})
}

// SSEHub fans messages out to connected clients.
type SSEHub interface {
	Register(client *SSEClient)
	Unregister(clientID string)
	GetClient(clientID string) *SSEClient
	GetClientCount() int

	BroadcastToAll(message *SSEMessage)
	BroadcastToUser(staffID uuid.UUID, message *SSEMessage)
	BroadcastToGroup(role staff.Role, message *SSEMessage)
	SendToClient(clientID string, message *SSEMessage) error

	Start(ctx context.Context)
	Stop()
}
