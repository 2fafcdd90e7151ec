package realtime

import (
	"encoding/json"
	"sync"

	"smartserve/pkg/logger"
	"smartserve/prometheus"

	"go.uber.org/zap"
)

// Client is one live session. Send is drained by the session's writer
// goroutine; the hub never blocks on it.
type Client struct {
	ID   string
	Send chan []byte
}

// Hub tracks which clients are joined to which user room. Room membership is
// derived state only; nothing here survives a disconnect.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]map[string]struct{} // client -> joined room ids
	rooms   map[string]map[*Client]struct{} // room id -> clients
}

// New creates an empty hub
func New() *Hub {
	return &Hub{
		clients: make(map[*Client]map[string]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// Register adds a connected client with no room membership yet
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = make(map[string]struct{})
}

// Unregister removes the client from every room and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	joined, ok := h.clients[client]
	if !ok {
		return
	}
	for room := range joined {
		h.leaveLocked(client, room)
	}
	delete(h.clients, client)
	close(client.Send)
}

// Join binds the client to a user room. Joining twice is a no-op; a client
// may be joined to several rooms at once.
func (h *Hub) Join(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	joined, ok := h.clients[client]
	if !ok {
		return
	}
	joined[userID] = struct{}{}
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*Client]struct{})
	}
	h.rooms[userID][client] = struct{}{}
}

// Leave removes the client from a single room
func (h *Hub) Leave(client *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if joined, ok := h.clients[client]; ok {
		delete(joined, userID)
	}
	h.leaveLocked(client, userID)
}

func (h *Hub) leaveLocked(client *Client, userID string) {
	room, ok := h.rooms[userID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, userID)
	}
}

// EmitToUser delivers a payload to every session joined to the user's room.
// Delivery is fire-and-forget: a session whose buffer is full has the
// message dropped rather than stalling the caller.
func (h *Hub) EmitToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[userID] {
		select {
		case client.Send <- payload:
			prometheus.RealtimeDeliveredCounter.Inc()
		default:
			prometheus.RealtimeDroppedCounter.Inc()
			logger.GetLogger().Warn("Dropped realtime message for slow session",
				zap.String("client_id", client.ID),
				zap.String("user_id", userID))
		}
	}
}

// RoomSize reports how many sessions are joined to a user's room
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Event is the server-to-client message envelope
type Event struct {
	Event   string      `json:"event"`
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Encode marshals a server event for delivery
func (e Event) Encode() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}
