package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jakartapm25/kelurahan-engine/internal/logging"
)

// ProgressEvent reports completion of one scheduled timestamp task.
type ProgressEvent struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Status      string `json:"status"` // "ok" | "error"
	Reason      string `json:"reason,omitempty"`
	Completed   int    `json:"completed"`
	Total       int    `json:"total"`
}

// ProgressHub fans out ProgressEvents to every connected websocket client,
// following the usual broadcast-manager registration/unregistration pattern
// but for a single global feed instead of
// geohash-scoped subscriptions.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
}

// NewProgressHub builds an empty hub.
func NewProgressHub(logger *logging.Logger) *ProgressHub {
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWebSocket upgrades the connection and registers it for the lifetime of
// the socket; it only pushes events, and anything the client sends is read and
// discarded.
func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithField("error", err).Warn("progress websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// drain incoming frames until the client disconnects; no inbound protocol.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish pushes ev to every connected client, dropping ones that error.
func (h *ProgressHub) Publish(ev ProgressEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close disconnects every client.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
