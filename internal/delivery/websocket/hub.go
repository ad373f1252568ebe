// Package websocket рассылает события игровой сессии подключенным клиентам.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"parenting-server/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBuffer     = 32
	eventsBuffer   = 256
)

// TokenVerifier проверяет, что токен выдан для указанной сессии.
type TokenVerifier interface {
	VerifyFor(token string, sessionID uuid.UUID) error
}

// Hub управляет подписками клиентов на события сессий.
type Hub struct {
	verifier TokenVerifier
	upgrader websocket.Upgrader
	logger   *zap.Logger

	register   chan *Client
	unregister chan *Client
	events     chan domain.SessionEvent
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// Client - одно websocket-соединение, подписанное на одну сессию.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID uuid.UUID
	send      chan []byte
}

// NewHub создает Hub. allowedOrigins пустой - разрешены все источники.
func NewHub(verifier TokenVerifier, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		verifier:   verifier,
		logger:     logger.Named("WebSocketHub"),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan domain.SessionEvent, eventsBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		_, wildcard := set["*"]
		return wildcard
	}
}

// Run обрабатывает регистрацию и рассылку до отмены ctx.
// При остановке все клиенты отключаются.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("Client connected", zap.String("sessionID", c.sessionID.String()))

		case c := <-h.unregister:
			h.remove(c)

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event domain.SessionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal session event", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.sessionID != event.SessionID {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Медленный клиент.
			close(c.send)
			delete(h.clients, c)
			h.logger.Warn("Client dropped: send buffer full", zap.String("sessionID", c.sessionID.String()))
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		h.logger.Debug("Client disconnected", zap.String("sessionID", c.sessionID.String()))
	}
}

// Notify ставит событие в очередь рассылки. Не блокирует: при переполнении событие теряется.
func (h *Hub) Notify(event domain.SessionEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("Event dropped: queue full", zap.String("type", string(event.Type)))
	}
}

// ClientCount возвращает число подключенных клиентов.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler принимает соединения вида /ws?session_id=...&token=...
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
		if err != nil {
			http.Error(w, "invalid session_id", http.StatusBadRequest)
			return
		}
		if err := h.verifier.VerifyFor(r.URL.Query().Get("token"), sessionID); err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, domain.ErrSessionMismatch) {
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("Upgrade failed", zap.Error(err))
			return
		}

		c := &Client{hub: h, conn: conn, sessionID: sessionID, send: make(chan []byte, sendBuffer)}
		select {
		case h.register <- c:
		case <-h.done:
			conn.Close()
			return
		}
		go c.writePump()
		go c.readPump()
	})
}

// readPump читает только управляющие кадры; входящие сообщения игнорируются.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
