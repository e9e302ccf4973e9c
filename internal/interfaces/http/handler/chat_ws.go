package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

const (
	wsReadLimit    = 64 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SocketMessage is one inbound websocket frame
type SocketMessage struct {
	UserMessage string `json:"user_message"`
}

// socketConn serializes writes to a websocket connection
type socketConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socketConn) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteJSON(v)
}

func (s *socketConn) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// ChatSocket answers chat messages over a websocket. Frames are handled in
// order, which keeps writes to the session serialized.
// @Summary Chat websocket
// @Description Each text frame {"user_message": "..."} is answered with the chat response JSON, or an error object.
// @Tags Chat
// @Param tenant_id query string true "Tenant ID"
// @Param session_id query string true "Session ID"
// @Param api_key query string false "Tenant API key when the X-API-Key header cannot be set"
// @Success 101
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /chat/ws [get]
func (h *ChatHandler) ChatSocket(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	sessionID := c.Query("session_id")
	if tenantID == "" || sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "tenant_id and session_id are required")
		return
	}

	apiKey := c.GetHeader(APIKeyHeader)
	if apiKey == "" {
		apiKey = c.Query("api_key")
	}
	if err := h.tenants.Verify(c.Request.Context(), tenantID, apiKey); err != nil {
		writeAuthError(c, h.logger, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	ctx := log.WithSessionID(log.WithTenantID(c.Request.Context(), tenantID), sessionID)
	logger := log.FromContext(ctx, h.logger)
	ws := &socketConn{conn: conn}

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := ws.ping(); err != nil {
					return
				}
			}
		}
	}()

	logger.Info("Chat websocket opened")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Chat websocket read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg SocketMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if ws.writeJSON(response.ErrorResponse{Code: response.CodeInvalidRequest, Message: "Invalid message"}) != nil {
				return
			}
			continue
		}
		if _, code, text, ok := validateMessage(msg.UserMessage); !ok {
			if ws.writeJSON(response.ErrorResponse{Code: code, Message: text}) != nil {
				return
			}
			continue
		}

		reply, err := h.orchestrator.Chat(ctx, tenantID, sessionID, msg.UserMessage)
		if err != nil {
			logger.Error("Chat over websocket failed", "error", err)
			code := response.CodeInternal
			if errors.Is(err, domainRAG.ErrReindexConflict) {
				code = response.CodeReindexConflict
			}
			if ws.writeJSON(response.ErrorResponse{Code: code, Message: "Chat failed", Detail: err.Error()}) != nil {
				return
			}
			continue
		}

		if err := ws.writeJSON(reply); err != nil {
			logger.Warn("Chat websocket write failed", "error", err)
			return
		}
	}
}
