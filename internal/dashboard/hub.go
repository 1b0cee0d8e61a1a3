package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientRequest is the incoming WebSocket message format.
type clientRequest struct {
	Type string `json:"type"` // "run"
}

// event is the outgoing WebSocket message format.
type event struct {
	Type    string       `json:"type"` // "run" or "error"
	Run     *history.Run `json:"run,omitempty"`
	Message string       `json:"message,omitempty"`
}

// sendBuffer is the number of events queued per client before it is dropped.
const sendBuffer = 16

type client struct {
	conn *websocket.Conn
	send chan event
}

// Hub fans recorded runs out to every connected websocket client.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Broadcast sends run to all connected clients. Clients whose queue is full
// are disconnected.
func (h *Hub) Broadcast(run history.Run) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ev := event{Type: "run", Run: &run}
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// writeLoop owns all writes to the connection.
func (c *client) writeLoop() {
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Printf("dashboard: websocket write: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("dashboard: websocket upgrade: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan event, sendBuffer)}
	d.hub.register(c)
	go c.writeLoop()
	defer d.hub.unregister(c)

	// The request context ends with the handler's timeout; runs started
	// from the socket must outlive it.
	ctx := context.WithoutCancel(r.Context())

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("dashboard: websocket read: %v", err)
			}
			return
		}

		var req clientRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			d.sendError(c, "invalid message format")
			continue
		}

		switch req.Type {
		case "run":
			d.handleRunMessage(ctx, c)
		default:
			d.sendError(c, "unknown message type: "+req.Type)
		}
	}
}

// handleRunMessage triggers a run. Its result reaches every client,
// including this one, through Broadcast.
func (d *Dashboard) handleRunMessage(ctx context.Context, c *client) {
	if d.runner == nil {
		d.sendError(c, "runner not configured")
		return
	}
	if _, err := d.runner.Run(ctx, history.SourceServer); err != nil && !errors.Is(err, smoke.ErrEmptyResponse) {
		log.Printf("dashboard: triggered run: %v", err)
	}
}

func (d *Dashboard) sendError(c *client, message string) {
	d.hub.mu.Lock()
	defer d.hub.mu.Unlock()
	if _, ok := d.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- event{Type: "error", Message: message}:
	default:
	}
}
