package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"workforce-notification-service/internal/logging"
	"workforce-notification-service/internal/models"
)

// maxConnectionsPerUser caps concurrent dashboard sessions per employee.
const maxConnectionsPerUser = 10

// DashboardFrame is the wire shape pushed to connected dashboard sessions
// when a Dashboard-placement notification lands.
type DashboardFrame struct {
	NotificationID string              `json:"notificationId"`
	Priority       models.Priority     `json:"priority,omitempty"`
	Title          string              `json:"title"`
	Body           string              `json:"body"`
	Redirection    *models.Redirection `json:"redirection,omitempty"`
}

// Hub tracks live dashboard connections per employee. Connection upgrades
// belong to the HTTP layer; callers hand established conns to Add.
type Hub struct {
	connections map[string]map[*websocket.Conn]bool
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers a connection for an employee, enforcing the per-user cap.
func (h *Hub) Add(userPsID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, exists := h.connections[userPsID]; !exists {
		h.connections[userPsID] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[userPsID]) >= maxConnectionsPerUser {
		h.logger.Warnf("Max dashboard connections reached for user %s", userPsID)
		return
	}
	h.connections[userPsID][conn] = true
	h.logger.Infof("Added dashboard connection for user %s (total: %d)", userPsID, len(h.connections[userPsID]))
}

// Remove drops a connection for an employee.
func (h *Hub) Remove(userPsID string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conns, exists := h.connections[userPsID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, userPsID)
		}
		h.logger.Infof("Removed dashboard connection for user %s (remaining: %d)", userPsID, len(conns))
	}
}

// SendToUser pushes a frame to every live connection of an employee. Broken
// connections are dropped on write failure.
func (h *Hub) SendToUser(userPsID string, frame DashboardFrame) {
	message, err := json.Marshal(frame)
	if err != nil {
		h.logger.Errorf("Failed to marshal dashboard frame for user %s: %v", userPsID, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if conns, exists := h.connections[userPsID]; exists {
		for conn := range conns {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Errorf("Failed to send dashboard frame to user %s: %v", userPsID, err)
				delete(conns, conn)
			}
		}
		if len(conns) == 0 {
			delete(h.connections, userPsID)
		}
	}
}
