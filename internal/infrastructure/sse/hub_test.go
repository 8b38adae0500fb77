package sse

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

func newClient(id string, staffID uuid.UUID, roles ...staff.Role) *notification.SSEClient {
	return notification.NewSSEClient(id, staffID, roles)
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub()
	hub.Register(newClient("c1", uuid.New()))
	assert.Equal(t, 1, hub.GetClientCount())
	require.NotNil(t, hub.GetClient("c1"))

	hub.Unregister("c1")
	assert.Equal(t, 0, hub.GetClientCount())
	assert.Nil(t, hub.GetClient("c1"))
}

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub()
	staffID := uuid.New()
	target := newClient("c1", staffID)
	other := newClient("c2", uuid.New())
	hub.Register(target)
	hub.Register(other)

	msg := notification.NewSSEMessage("approval_required", json.RawMessage(`{}`))
	hub.BroadcastToUser(staffID, msg)

	select {
	case got := <-target.MessageChan:
		assert.Equal(t, "approval_required", got.Event)
	default:
		t.Fatal("target client did not receive the message")
	}
	select {
	case <-other.MessageChan:
		t.Fatal("other client should not receive the message")
	default:
	}
}

func TestBroadcastToUser_AllConnections(t *testing.T) {
	hub := NewHub()
	staffID := uuid.New()
	desk := newClient("c1", staffID)
	phone := newClient("c2", staffID)
	hub.Register(desk)
	hub.Register(phone)

	hub.BroadcastToUser(staffID, notification.NewSSEMessage("approval_required", nil))

	assert.Len(t, desk.MessageChan, 1)
	assert.Len(t, phone.MessageChan, 1)
}

func TestBroadcastToGroup(t *testing.T) {
	hub := NewHub()
	supervisor := newClient("c1", uuid.New(), staff.RoleSupervisor)
	hrOfficer := newClient("c2", uuid.New(), staff.RoleHROfficer)
	hub.Register(supervisor)
	hub.Register(hrOfficer)

	hub.BroadcastToGroup(staff.RoleSupervisor, notification.NewSSEMessage("approval_required", nil))

	assert.Len(t, supervisor.MessageChan, 1)
	assert.Len(t, hrOfficer.MessageChan, 0)
}

func TestSendToClient_UnknownClient(t *testing.T) {
	hub := NewHub()
	err := hub.SendToClient("missing", notification.NewSSEMessage("x", nil))
	assert.ErrorIs(t, err, notification.ErrClientNotFound)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	staffID := uuid.New()
	c := newClient("c1", staffID)
	hub.Register(c)

	for i := 0; i < cap(c.MessageChan); i++ {
		hub.BroadcastToUser(staffID, notification.NewSSEMessage("fill", nil))
	}
	err := hub.SendToClient("c1", notification.NewSSEMessage("overflow", nil))
	assert.ErrorIs(t, err, notification.ErrChannelFull)
}

func TestStopClosesAllClients(t *testing.T) {
	hub := NewHub()
	staffID := uuid.New()
	c := newClient("c1", staffID)
	hub.Register(c)

	hub.Stop()
	assert.Equal(t, 0, hub.GetClientCount())
	_, open := <-c.MessageChan
	assert.False(t, open)

	// The staff index is cleared with the clients.
	hub.BroadcastToUser(staffID, notification.NewSSEMessage("late", nil))
}
