package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"teamhub/internal/logger"
	"teamhub/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Change is a single mutation pushed to connected clients
type Change struct {
	Entity string     `json:"entity"`
	Action string     `json:"action"`
	ID     uuid.UUID  `json:"id"`
	ChatID *uuid.UUID `json:"chat_id,omitempty"`
}

// Действия над сущностями
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionMoved   = "moved"
)

type client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans mutations out to websocket subscribers. Board changes go to
// everyone; chat changes only to the chat's participants.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	jwtSecret string
	upgrader  websocket.Upgrader
	log       *logger.Logger
}

func NewHub(jwtSecret string, log *logger.Logger) *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		jwtSecret: jwtSecret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Publish delivers a change to subscribers. A nil recipients slice means
// broadcast; otherwise only the listed users receive it.
func (h *Hub) Publish(change Change, recipients []uuid.UUID) {
	payload, err := json.Marshal(change)
	if err != nil {
		h.log.Error("failed to encode change event", zap.Error(err))
		return
	}

	var allowed map[uuid.UUID]struct{}
	if recipients != nil {
		allowed = make(map[uuid.UUID]struct{}, len(recipients))
		for _, id := range recipients {
			allowed[id] = struct{}{}
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if allowed != nil {
			if _, ok := allowed[c.userID]; !ok {
				continue
			}
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer: drop the event rather than block the publisher
		}
	}
}

// HandleWS обновляет соединение до websocket и регистрирует подписчика.
// Токен передается в query-параметре, так как браузерный WebSocket API
// не позволяет выставить заголовок Authorization.
func (h *Hub) HandleWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is required"})
		return
	}

	userID, err := middleware.ParseUserID(h.jwtSecret, tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	h.log.Info("websocket client connected", zap.String("user_id", userID.String()))

	go h.writePump(cl)
	go h.readPump(cl)
}

// ConnectedClients returns the number of live subscriptions
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	cl.conn.Close()
	h.log.Info("websocket client disconnected", zap.String("user_id", cl.userID.String()))
}

func (h *Hub) readPump(cl *client) {
	defer h.unregister(cl)

	cl.conn.SetReadLimit(512)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Inbound frames are ignored; reading only services control frames
		// and surfaces closure
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
