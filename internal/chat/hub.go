// Package chat is the realtime transport for trade rooms: a websocket hub
// per room with presence events and message fan-out. The escrow core only
// touches it through the Publish interface.
package chat

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/logger"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type roomHub struct {
	roomID  string
	mu      sync.RWMutex
	clients map[*websocket.Conn]string // conn -> account id
}

func (h *roomHub) broadcast(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Log.Warn("chat event marshal failed", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *roomHub) register(c *websocket.Conn, accountID string) {
	h.mu.Lock()
	h.clients[c] = accountID
	h.mu.Unlock()
}

func (h *roomHub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Hub tracks one roomHub per trade room, created lazily on first join.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*roomHub
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*roomHub)}
}

func (h *Hub) room(roomID string) *roomHub {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := &roomHub{roomID: roomID, clients: make(map[*websocket.Conn]string)}
	h.rooms[roomID] = r
	return r
}

// Publish implements traderoom.Publisher: fan an event out to everyone in
// the room.
func (h *Hub) Publish(roomID, event string, data any) {
	h.room(roomID).broadcast(Event{Type: event, Data: data})
}

// Join registers a connection and announces presence.
func (h *Hub) Join(roomID, accountID string, conn *websocket.Conn) {
	r := h.room(roomID)
	r.register(conn, accountID)
	r.broadcast(Event{Type: "presence_join", Data: map[string]string{"user_id": accountID}})
}

// Leave drops the connection and announces departure.
func (h *Hub) Leave(roomID, accountID string, conn *websocket.Conn) {
	r := h.room(roomID)
	r.unregister(conn)
	_ = conn.Close()
	r.broadcast(Event{Type: "presence_leave", Data: map[string]string{"user_id": accountID}})
}
