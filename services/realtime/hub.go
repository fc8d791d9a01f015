package realtime

import (
	"net/http"
	"sync"
	"time"

	"lexdesk/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	// sendQueueSize bounds the events waiting for a slow connection; a client
	// that falls further behind is disconnected.
	sendQueueSize = 32
)

// Event is the envelope written to connected clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

const EventMessageCreated = "message_created"

type client struct {
	conn      *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan Event, sendQueueSize), done: make(chan struct{})}
}

// enqueue hands an event to the writer without blocking. It reports false
// when the client is closed or its queue is full.
func (c *client) enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// writeLoop is the only goroutine writing to the connection.
func (c *client) writeLoop(userID string) {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(ev); err != nil {
				zap.S().Warnw("Failed to push realtime event", "user_id", userID, "event", ev.Event, "error", err)
				c.close()
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub keeps the open websocket connections of each participant. A
// participant may have several tabs open.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

// NewHub returns a hub that accepts connections from allowedOrigins, or from
// any origin when the list is empty.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Serve upgrades the request and holds the connection for userID until the
// peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(conn)
	h.add(userID, c)
	go c.writeLoop(userID)
	zap.S().Debugw("Realtime client connected", "user_id", userID)

	defer func() {
		h.remove(userID, c)
		c.close()
		zap.S().Debugw("Realtime client disconnected", "user_id", userID)
	}()

	// Keep connection alive; clients only listen.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return nil
		}
	}
}

func (h *Hub) add(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) remove(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[userID], c)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Connected returns how many connections userID has open.
func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Send queues an event for every connection of each user without waiting
// for the network. Connections that are closed or too far behind are dropped.
func (h *Hub) Send(userIDs []string, event Event) {
	for _, userID := range userIDs {
		h.mu.Lock()
		targets := make([]*client, 0, len(h.clients[userID]))
		for c := range h.clients[userID] {
			targets = append(targets, c)
		}
		h.mu.Unlock()

		for _, c := range targets {
			if !c.enqueue(event) {
				zap.S().Warnw("Dropping slow realtime client", "user_id", userID, "event", event.Event)
				h.remove(userID, c)
				c.close()
			}
		}
	}
}

// PublishMessage pushes a stored message to the given participants.
func (h *Hub) PublishMessage(message *models.Message, userIDs []string) {
	h.Send(userIDs, Event{Event: EventMessageCreated, Data: message})
}
