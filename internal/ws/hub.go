package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256

	// resultReserve send slots are kept free while streaming a flight so
	// its result still fits behind the points.
	resultReserve = 8
	resultWait    = 2 * time.Second
)

// Client is one websocket connection, optionally joined to a bag session.
type Client struct {
	id    string
	bagID string
	conn  *websocket.Conn
	send  chan []byte
	log   *logrus.Entry
}

// Hub tracks connected clients and the bag sessions they follow.
type Hub struct {
	clients    map[string]*Client
	bags       map[string]map[string]*Client // bag ID -> client ID -> client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		bags:       make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log := logger.WithComponent("ws")
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.RLock()
			for _, c := range h.clients {
				c.conn.Close()
			}
			h.mu.RUnlock()
			log.Info("websocket hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			if c.bagID != "" {
				if _, ok := h.bags[c.bagID]; !ok {
					h.bags[c.bagID] = make(map[string]*Client)
				}
				h.bags[c.bagID][c.id] = c
			}
			n := len(h.clients)
			h.mu.Unlock()
			c.sendJSON(map[string]interface{}{"type": "connected", "client_id": c.id, "bag_id": c.bagID})
			c.log.WithField("clients", n).Info("client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.id]; ok && cur == c {
				delete(h.clients, c.id)
				if room, ok := h.bags[c.bagID]; ok {
					delete(room, c.id)
					if len(room) == 0 {
						delete(h.bags, c.bagID)
					}
				}
				close(c.send)
				c.log.Info("client disconnected")
			}
			h.mu.Unlock()
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client.
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.WithComponent("ws").WithError(err).Error("failed to marshal broadcast")
		return
	}
	h.broadcastRaw(data)
}

func (h *Hub) broadcastRaw(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(data)
	}
}

// BroadcastToBag sends a message to every client following a bag session.
func (h *Hub) BroadcastToBag(bagID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.WithComponent("ws").WithError(err).Error("failed to marshal bag message")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.bags[bagID] {
		c.enqueue(data)
	}
}

func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		c.log.Warn("client send buffer full, dropping message")
		return false
	}
}

// hasRoom reports whether more than n send slots are free.
func (c *Client) hasRoom(n int) bool {
	return cap(c.send)-len(c.send) > n
}

// deliver queues data, waiting up to resultWait for the writer to drain.
func (c *Client) deliver(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
	}
	timer := time.NewTimer(resultWait)
	defer timer.Stop()
	select {
	case c.send <- data:
		return true
	case <-timer.C:
		c.log.Warn("client send buffer stayed full, dropping message")
		return false
	}
}

func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal message")
		return
	}
	c.enqueue(data)
}

func (c *Client) sendError(message string) {
	c.sendJSON(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// writePump writes messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("websocket ping failed")
				return
			}
		}
	}
}
