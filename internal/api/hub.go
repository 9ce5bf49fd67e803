// Package api serves the timeline pages, the JSON API and live reload
// notifications.
package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hub tracks the pages watching the log and fans reload notices out to them.
// Only the newest notice matters to a page, so each client holds at most one
// pending notice and older ones are replaced.
type Hub struct {
	mu    sync.RWMutex
	peers map[*Client]struct{}

	notices chan []byte
	join    chan *Client
	leave   chan *Client
	done    chan struct{}
}

// Client is one page connected to the reload socket.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	pending chan []byte
}

// NewHub creates a Hub. Call Run to start it.
func NewHub() *Hub {
	return &Hub{
		peers:   make(map[*Client]struct{}),
		notices: make(chan []byte, 1),
		join:    make(chan *Client),
		leave:   make(chan *Client),
		done:    make(chan struct{}),
	}
}

// Run serves joins, leaves and notices until ctx is done, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.peers {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.join:
			h.mu.Lock()
			h.peers[c] = struct{}{}
			h.mu.Unlock()

		case c := <-h.leave:
			h.mu.Lock()
			if _, ok := h.peers[c]; ok {
				h.drop(c)
			}
			h.mu.Unlock()

		case msg := <-h.notices:
			h.mu.RLock()
			for c := range h.peers {
				c.offer(msg)
			}
			h.mu.RUnlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	delete(h.peers, c)
	close(c.pending)
}

// Broadcast queues v, encoded as JSON, for every connected client. A notice
// still queued from an earlier call is replaced.
func (h *Hub) Broadcast(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	for {
		select {
		case h.notices <- msg:
			return
		case <-h.done:
			return
		default:
		}
		select {
		case <-h.notices:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.join <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		pending: make(chan []byte, 1),
	}
}

// offer replaces any undelivered notice with msg. Only the hub goroutine
// calls it, so the drain and send cannot interleave with another offer.
func (c *Client) offer(msg []byte) {
	select {
	case <-c.pending:
	default:
	}
	select {
	case c.pending <- msg:
	default:
	}
}

// WritePump delivers notices to the page and keeps the connection alive with
// pings. It returns when the hub drops the client or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.pending:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump reads until the connection closes. Pages send nothing, but
// reading is needed to process pongs and close frames.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
