package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"fintrack/internal/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// clients only send control frames
	maxMessageSize = 512

	sendBuffer = 64
)

// Message types pushed to websocket clients besides the change events.
const (
	MessageBudgetsSnapshot = "budgets.snapshot"
	MessageHello           = "hello"
)

var errClientClosed = errors.New("client is closed")

// wsMessage is the envelope of every frame sent to a client.
type wsMessage struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks connected websocket clients. It is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	closed  bool
	logger  *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		clients: make(map[string]*wsClient),
		logger:  logger.WithComponent(log.ComponentWebsocket),
	}
}

func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	h.logger.Debug("WebSocket client registered", log.FieldClientID, c.id)
	return true
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.logger.Debug("WebSocket client unregistered", log.FieldClientID, c.id)
	}
}

// Broadcast sends a message to every client. Slow clients whose buffer is
// full miss the message.
func (h *Hub) Broadcast(msgType string, payload any) {
	data, err := json.Marshal(wsMessage{Type: msgType, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Failed to serialize websocket message", "type", msgType, log.FieldError, err)
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.logger.Warn("Failed to send to websocket client", log.FieldClientID, c.id, log.FieldError, err)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*wsClient)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// wsClient is a single websocket connection.
type wsClient struct {
	id     string
	conn   *websocket.Conn
	hub    *Hub
	out    chan []byte
	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func newWSClient(conn *websocket.Conn, hub *Hub) *wsClient {
	return &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		hub:  hub,
		out:  make(chan []byte, sendBuffer),
	}
}

func (c *wsClient) send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.out <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

// close ends the write pump, which then closes the connection.
func (c *wsClient) close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.out)
		c.mu.Unlock()
	})
}

// readPump drains control frames until the peer goes away.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket unexpected close", log.FieldClientID, c.id, log.FieldError, err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.logger.Warn("WebSocket write error", log.FieldClientID, c.id, log.FieldError, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// originChecker accepts requests without an Origin, same-host origins and
// the configured allow list.
func originChecker(allowed []string) func(*http.Request) bool {
	allow := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allow[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allow[origin] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// handleWebSocket upgrades the connection and streams change events.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		logger.WarnContext(r.Context(), "WebSocket upgrade failed", log.FieldError, err)
		return
	}

	client := newWSClient(conn, s.hub)
	if !s.hub.register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	logger.InfoContext(r.Context(), "WebSocket client connected", log.FieldClientID, client.id)

	go client.writePump()
	go client.readPump()

	hello, _ := json.Marshal(wsMessage{Type: MessageHello, Payload: map[string]string{"clientId": client.id}, Timestamp: time.Now().UTC()})
	_ = client.send(hello)
	if s.budgets != nil {
		if st := s.budgets.State(); !st.Loading && st.Err == nil && st.Data != nil {
			if data, err := json.Marshal(wsMessage{Type: MessageBudgetsSnapshot, Payload: toBudgetsResponse(st.Data), Timestamp: time.Now().UTC()}); err == nil {
				_ = client.send(data)
			}
		}
	}
}
