package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/roomboard/internal/model"
)

const (
	TypeSnapshot    = "snapshot"
	TypeReservation = "reservation_created"
)

// Message is what room screens receive.
type Message struct {
	Type     string          `json:"type"`
	Room     string          `json:"room"`
	Snapshot *model.Snapshot `json:"snapshot,omitempty"`
	Extra    map[string]any  `json:"extra,omitempty"`
}

func NewSnapshotMessage(snap model.Snapshot) Message {
	return Message{Type: TypeSnapshot, Room: snap.RoomID, Snapshot: &snap}
}

func NewMessage(msgType, roomID string, extra map[string]any) Message {
	return Message{Type: msgType, Room: roomID, Extra: extra}
}

// Hub tracks connected screens and fans messages out per room.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger.With("component", "websocket"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", "room", c.room)
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// BroadcastRoom sends msg to every client subscribed to roomID. Clients
// with a full buffer miss the message.
func (h *Hub) BroadcastRoom(roomID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.room != roomID {
			continue
		}
		if !c.Enqueue(data) {
			h.logger.Debug("client buffer full, dropping message", "room", roomID, "type", msg.Type)
		}
	}
}

// Publish broadcasts a board snapshot to the room's screens.
func (h *Hub) Publish(roomID string, snap model.Snapshot) {
	h.BroadcastRoom(roomID, NewSnapshotMessage(snap))
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomClientCount returns the number of screens watching roomID.
func (h *Hub) RoomClientCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.room == roomID {
			n++
		}
	}
	return n
}
