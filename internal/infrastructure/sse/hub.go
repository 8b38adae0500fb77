package sse

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mofad-hr/leave-portal/internal/domain/notification"
	"github.com/mofad-hr/leave-portal/internal/domain/staff"
)

// Hub manages SSE connections for the portal. A staff member may hold
// several connections (desk browser, phone); byStaff indexes them so
// per-approver notifications do not scan every connection.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*notification.SSEClient
	byStaff map[uuid.UUID]map[string]*notification.SSEClient
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*notification.SSEClient),
		byStaff: make(map[uuid.UUID]map[string]*notification.SSEClient),
	}
}

func (h *Hub) Register(client *notification.SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ClientID] = client
	conns := h.byStaff[client.StaffID]
	if conns == nil {
		conns = make(map[string]*notification.SSEClient)
		h.byStaff[client.StaffID] = conns
	}
	conns[client.ClientID] = client
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	c.Close()
	delete(h.clients, clientID)
	if conns := h.byStaff[c.StaffID]; conns != nil {
		delete(conns, clientID)
		if len(conns) == 0 {
			delete(h.byStaff, c.StaffID)
		}
	}
}

func (h *Hub) GetClient(clientID string) *notification.SSEClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[clientID]
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastToAll(message *notification.SSEMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		trySend(c, message)
	}
}

// BroadcastToUser delivers to every connection the staff member holds.
func (h *Hub) BroadcastToUser(staffID uuid.UUID, message *notification.SSEMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.byStaff[staffID] {
		trySend(c, message)
	}
}

// BroadcastToGroup delivers to every connection whose staff member holds
// the role, e.g. all HR officers awaiting a final sign-off.
func (h *Hub) BroadcastToGroup(role staff.Role, message *notification.SSEMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.HasRole(role) {
			trySend(c, message)
		}
	}
}

func (h *Hub) SendToClient(clientID string, message *notification.SSEMessage) error {
	h.mu.RLock()
	c := h.clients[clientID]
	h.mu.RUnlock()
	if c == nil {
		return notification.ErrClientNotFound
	}
	if !trySend(c, message) {
		return notification.ErrChannelFull
	}
	return nil
}

func (h *Hub) Start(ctx context.Context) {
	_ = ctx
}

func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.Close()
		delete(h.clients, id)
	}
	h.byStaff = make(map[uuid.UUID]map[string]*notification.SSEClient)
}

// trySend drops the message when the client's buffer is full rather than
// blocking a broadcast.
func trySend(c *notification.SSEClient, msg *notification.SSEMessage) bool {
	select {
	case c.MessageChan <- msg:
		return true
	default:
		return false
	}
}
