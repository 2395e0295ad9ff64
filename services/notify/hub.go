// Package notify pushes events to signed-in accounts over websockets.
// Delivery is best effort: slow or closed connections are dropped, never
// waited on.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Event is the wire payload pushed to clients.
type Event struct {
	ID      string    `json:"id"`
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	Time    time.Time `json:"time"`
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

type Hub struct {
	mu      sync.Mutex
	clients map[int]map[*client]struct{} // keyed by account id
}

func NewHub() *Hub {
	return &Hub{clients: map[int]map[*client]struct{}{}}
}

// Attach registers an upgraded connection for an account and services it
// until the peer goes away. Blocks, so call it from the HTTP handler
// goroutine.
func (h *Hub) Attach(accountID int, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan Event, sendBuffer)}

	h.mu.Lock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = map[*client]struct{}{}
	}
	h.clients[accountID][c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("Websocket attached", "account_id", accountID)

	go c.writePump()

	// Drain reads so pings and close frames are processed; we never expect
	// client messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.detach(accountID, c)
}

func (h *Hub) detach(accountID int, c *client) {
	h.mu.Lock()
	if set, ok := h.clients[accountID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, accountID)
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}

func (c *client) writePump() {
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// Notify sends an event to every connection the account has open. Events to
// full buffers are dropped.
func (h *Hub) Notify(accountID int, event string, payload any) {
	ev := Event{
		ID:      uuid.NewString(),
		Event:   event,
		Payload: payload,
		Time:    time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[accountID] {
		select {
		case c.send <- ev:
		default:
			slog.Debug("Notification dropped, slow client", "account_id", accountID, "event", event)
		}
	}
}
