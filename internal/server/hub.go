package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/shared"
	"github.com/RubberDuckShobe/NeosSpotifyStatus/internal/tracker"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// BridgePath is the websocket endpoint subscribers connect to.
const BridgePath = "/neos-spotify-bridge"

// sendBuffer bounds the per-client outbound queue; messages beyond it are
// dropped rather than blocking the broadcast.
const sendBuffer = 32

// Controller is the tracking service surface the hub drives: forced refresh
// on connect and inbound command dispatch.
type Controller interface {
	Refresh()
	HandleCommand(ctx context.Context, raw string)
}

// client is one connected subscriber with its outbound queue and the set of
// fields it wants notifications for.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan string
	fields tracker.Field
}

func (c *client) wants(field tracker.Field) bool {
	return c.fields&field != 0
}

// Hub is the websocket fan-out: it upgrades connections, tracks the
// subscriber set, and pushes encoded change notifications to every
// interested client. Delivery is best effort; a slow client loses messages
// instead of stalling the rest.
//
// Implements the tracker's Broadcaster and the server Handler interface.
type Hub struct {
	log        *log.Logger
	upgrader   websocket.Upgrader
	controller Controller

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a Hub. SetController must be called before serving traffic.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			// Subscribers are local overlay clients, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[string]*client),
	}
}

// SetController binds the tracking service the hub forwards to.
func (h *Hub) SetController(c Controller) {
	h.controller = c
}

// Routes returns the HTTP routes this handler serves.
func (h *Hub) Routes() []string {
	return []string{BridgePath}
}

// ServeHTTP upgrades the request to a websocket session, registers it as a
// subscriber to all fields, and forces a full refresh so the new client
// receives the complete current state.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:     shared.GenerateID(),
		conn:   conn,
		send:   make(chan string, sendBuffer),
		fields: tracker.AllFields,
	}

	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info("connection opened", "session", c.id, "sessions", count)

	go h.writePump(c)
	go h.readPump(c)

	if h.controller != nil {
		h.controller.Refresh()
	}
}

// SessionCount returns the number of connected subscribers.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast pushes one change notification to every client interested in its
// field. A full send queue drops the message for that client only.
func (h *Hub) Broadcast(n tracker.Notification) {
	message := n.Encode()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if !c.wants(n.Field) {
			continue
		}
		select {
		case c.send <- message:
		default:
			h.log.Warn("dropping message for slow session", "session", c.id)
		}
	}
}

// Clear tells every subscriber to drop its displayed state.
func (h *Hub) Clear() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- tracker.ClearMessage:
		default:
			h.log.Warn("dropping clear for slow session", "session", c.id)
		}
	}
}

// Close disconnects all subscribers and stops command dispatch.
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// writePump drains the client's send queue onto the wire. A write failure
// affects only this client.
func (h *Hub) writePump(c *client) {
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
			h.log.Debug("write failed", "session", c.id, "error", err)
			c.conn.Close()
			return
		}
	}
	c.conn.Close()
}

// readPump forwards inbound messages as commands until the connection drops.
// Commands run concurrently; a slow command never blocks the read loop.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			h.log.Info("connection closed", "session", c.id, "reason", err)
			return
		}

		if h.controller != nil {
			go h.controller.HandleCommand(h.ctx, string(data))
		}
	}
}

// remove deregisters a client after its connection ends.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		close(c.send)
		delete(h.clients, c.id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info("session removed", "session", c.id, "sessions", count)
}
