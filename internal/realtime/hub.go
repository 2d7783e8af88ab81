package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks which connections are in which rooms and broadcasts events to
// them. Room membership is derived purely from live connections; nothing is
// persisted, so a dropped connection cleans up by unregistering.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger *zap.Logger
}

var _ Distributor = (*Hub)(nil)

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

// tenantRoom is the tenant-wide room every connection of the tenant joins
// on registration. Board events of the whole workspace land here.
func tenantRoom(tenantID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:boards", tenantID)
}

// boardRoom is namespaced by tenant first, so two tenants using the same
// literal board id string can never share a room.
func boardRoom(tenantID, boardID uuid.UUID) string {
	return fmt.Sprintf("tenant:%s:board:%s", tenantID, boardID)
}

// Register adds the connection to its tenant-wide room.
func (h *Hub) Register(c *Client) {
	h.join(tenantRoom(c.TenantID), c)
}

// Unregister drops the connection from every room and closes its send
// channel, terminating the write pump.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for name, clients := range h.rooms {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.rooms, name)
			}
		}
	}
	close(c.send)
	h.mu.Unlock()
}

// JoinBoard subscribes the connection to a board room. The room is always
// resolved against the tenant the connection was bound to at handshake time,
// never against anything the client supplies.
func (h *Hub) JoinBoard(c *Client, boardID uuid.UUID) {
	h.join(boardRoom(c.TenantID, boardID), c)
}

func (h *Hub) LeaveBoard(c *Client, boardID uuid.UUID) {
	name := boardRoom(c.TenantID, boardID)
	h.mu.Lock()
	if clients, ok := h.rooms[name]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, name)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) join(name string, c *Client) {
	h.mu.Lock()
	clients, ok := h.rooms[name]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[name] = clients
	}
	clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) EmitToTenant(tenantID uuid.UUID, event string, payload interface{}) {
	if h == nil {
		return
	}
	h.broadcast(tenantRoom(tenantID), event, payload)
}

func (h *Hub) EmitToBoard(tenantID, boardID uuid.UUID, event string, payload interface{}) {
	if h == nil {
		return
	}
	h.broadcast(boardRoom(tenantID, boardID), event, payload)
}

type eventEnvelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// broadcast delivers the event to every connection currently in the room.
// Delivery is at-most-once: a client whose send buffer is full loses the
// event, and an empty room is a no-op.
func (h *Hub) broadcast(room, event string, payload interface{}) {
	message, err := json.Marshal(eventEnvelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Warn("failed to encode realtime event", zap.String("event", event), zap.Error(err))
		return
	}

	// The read lock is held across the sends so Unregister cannot close a
	// send channel mid-broadcast. Sends are non-blocking, the lock is never
	// held across a suspension.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("dropping realtime event for slow client",
				zap.String("event", event),
				zap.String("user_id", c.UserID.String()))
		}
	}
}
