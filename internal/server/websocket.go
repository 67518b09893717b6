package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/cfgjson"
	"github.com/muurk/blegw/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	broadcastQueue = 16
)

// Websocket message types.
const (
	MessageStatus      = "status"
	MessageConfig      = "config"
	MessageConfigReset = "config_reset"
)

// Message is one frame of the websocket change feed.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub manages WebSocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	mu         sync.Mutex
	broadcast  chan Message
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Message, broadcastQueue),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.CloseAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logging.Info("WebSocket client connected", zap.String("remote_addr", client.RemoteAddr().String()))
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.each(func(c *websocket.Conn) error {
				_ = c.SetWriteDeadline(time.Now().Add(writeWait))
				return c.WriteJSON(message)
			})
		case <-ping.C:
			h.each(func(c *websocket.Conn) error {
				return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			})
		}
	}
}

func (h *Hub) each(write func(*websocket.Conn) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := write(client); err != nil {
			logging.Debug("WebSocket write failed, dropping client",
				zap.String("remote_addr", client.RemoteAddr().String()),
				zap.Error(err))
			_ = client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) remove(client *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		_ = client.Close()
		logging.Info("WebSocket client disconnected", zap.String("remote_addr", client.RemoteAddr().String()))
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *websocket.Conn) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
		_ = client.Close()
	}
}

// Broadcast queues a message for every client. It never blocks; messages
// are dropped when the queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn("WebSocket broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		_ = client.Close()
		delete(h.clients, client)
	}
}

// handleWebSocket upgrades the request and sends the current status and
// configuration before registering the client for the change feed. Client
// frames are read only to detect disconnection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Message{Type: MessageStatus, Data: mustJSON(s.status(s.networkState()))}); err != nil {
		_ = conn.Close()
		return
	}
	if cfg, err := s.store.Get(); err == nil {
		if doc, err := cfgjson.EncodeForUI(cfg, s.storageStatus()); err == nil {
			_ = conn.WriteJSON(Message{Type: MessageConfig, Data: doc})
		}
	}

	if !s.hub.Register(conn) {
		_ = conn.Close()
		return
	}
	defer s.hub.Unregister(conn)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
