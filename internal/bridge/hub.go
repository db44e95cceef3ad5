package bridge

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pinegrove/cloudcore/internal/snapshot"
)

// #region hub

// Hub fans tick frames out to websocket watchers. Watchers are read-only:
// inbound messages are drained and dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*sync.Mutex
	up      websocket.Upgrader
	log     zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		up: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.With().Str("component", "framehub").Logger(),
	}
}

// Handle upgrades an echo request into a watcher connection.
func (h *Hub) Handle(c echo.Context) error {
	conn, err := h.up.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info().Int("watchers", n).Msg("watcher connected")

	// Reader loop: drain control frames, drop the client on error.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Publish sends the frame to every watcher. Slow or dead watchers are
// dropped rather than allowed to stall the tick path.
func (h *Hub) Publish(fr snapshot.Frame) {
	payload, err := json.Marshal(fr)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal frame")
		return
	}

	h.mu.Lock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, m := range h.clients {
		conns[c] = m
	}
	h.mu.Unlock()

	for conn, wmu := range conns {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, payload)
		wmu.Unlock()
		if err != nil {
			h.drop(conn)
		}
	}
}

// Close shuts down every watcher connection.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
		h.log.Info().Msg("watcher dropped")
	}
}

// #endregion hub
