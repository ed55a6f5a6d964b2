package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/lotwatch/lotwatch/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub pushes status snapshots to connected dashboards.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Broadcast sends the snapshot to every connected client, dropping the ones
// that fail to take the write.
func (h *Hub) Broadcast(snapshot []models.ParkingSpace) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode status snapshot")
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			c.Close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (s *Server) handleStatusSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.WithError(err).Warn("ws upgrade failed")
		return nil
	}
	// Seed the client with the current snapshot before it joins the hub, so
	// the seed write cannot collide with a broadcast.
	if snapshot, err := s.repo.ListSpaces(c.Request().Context()); err == nil {
		if data, err := json.Marshal(snapshot); err != nil {
			s.logger.WithError(err).Error("Failed to encode status snapshot")
		} else {
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
	}

	s.hub.add(conn)
	go s.readPump(conn)
	return nil
}

func (s *Server) readPump(conn *websocket.Conn) {
	defer func() {
		s.hub.remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
