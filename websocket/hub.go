package websocket

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client wraps a registered socket. The underlying connection supports one writer at a
// time, so every frame for it, from the hub or from the socket's own goroutine, goes
// through WriteJSON here.
type Client struct {
	conn Conn
	mu   sync.Mutex
}

func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks the open sockets of every signed-in user. A user may have several tabs open.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[Conn]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[Conn]*Client)}
}

// Register adds the socket and returns the Client the caller must write through.
// Registering the same conn twice returns the existing Client.
func (h *Hub) Register(userID uuid.UUID, conn Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[userID]
	if !ok {
		conns = make(map[Conn]*Client)
		h.clients[userID] = conns
	}
	client, ok := conns[conn]
	if !ok {
		client = &Client{conn: conn}
		conns[conn] = client
	}
	log.WithFields(log.Fields{"user_id": userID, "connections": len(conns)}).Debug("Client registered")
	return client
}

func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(userID, conn)
	log.WithField("user_id", userID).Debug("Client unregistered")
}

func (h *Hub) remove(userID uuid.UUID, conn Conn) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// SendToUser writes v to every socket of the user. Sockets that fail are closed and dropped.
func (h *Hub) SendToUser(userID uuid.UUID, v any) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for _, client := range h.clients[userID] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	sent := 0
	var broken []Conn
	for _, client := range targets {
		if err := client.WriteJSON(v); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Error sending message to client")
			_ = client.conn.Close()
			broken = append(broken, client.conn)
			continue
		}
		sent++
	}

	if len(broken) > 0 {
		h.mu.Lock()
		for _, conn := range broken {
			h.remove(userID, conn)
		}
		h.mu.Unlock()
	}
	return sent
}

// Online reports how many sockets the user has open.
func (h *Hub) Online(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
