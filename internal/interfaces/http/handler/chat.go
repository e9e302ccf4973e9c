package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	appChat "github.com/tourassist/backend/internal/application/chat"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	domainChat "github.com/tourassist/backend/internal/domain/chat"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

// MaxMessageChars caps a chat message
const MaxMessageChars = 2000

// ChatHandler chat endpoints
type ChatHandler struct {
	tenants      *appTenant.Service
	orchestrator *appChat.Orchestrator
	logger       *slog.Logger
}

// NewChatHandler creates the chat handler
func NewChatHandler(tenants *appTenant.Service, orchestrator *appChat.Orchestrator) *ChatHandler {
	return &ChatHandler{
		tenants:      tenants,
		orchestrator: orchestrator,
		logger:       log.NewModuleLogger("http", "chat"),
	}
}

// ChatRequest chat body
type ChatRequest struct {
	TenantID    string `json:"tenant_id" binding:"required"`
	SessionID   string `json:"session_id" binding:"required"`
	UserMessage string `json:"user_message"`
}

// ChatResponse chat answer
type ChatResponse = domainChat.Reply

// Chat answers a message grounded on the tenant's documents
// @Summary Chat
// @Description Answers from the tenant's documents, a built-in tool, or a fixed low-confidence reply.
// @Tags Chat
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Tenant API key"
// @Param request body ChatRequest true "Message"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid request", err.Error())
		return
	}

	if status, code, msg, ok := validateMessage(req.UserMessage); !ok {
		response.Error(c, status, code, msg)
		return
	}

	ctx := c.Request.Context()
	if err := h.tenants.Verify(ctx, req.TenantID, c.GetHeader(APIKeyHeader)); err != nil {
		writeAuthError(c, h.logger, err)
		return
	}

	ctx = log.WithSessionID(log.WithTenantID(ctx, req.TenantID), req.SessionID)
	reply, err := h.orchestrator.Chat(ctx, req.TenantID, req.SessionID, req.UserMessage)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Success(c, reply)
}

// validateMessage rejects empty and oversized messages
func validateMessage(message string) (status, code int, msg string, ok bool) {
	if strings.TrimSpace(message) == "" {
		return http.StatusBadRequest, response.CodeEmptyMessage, "Empty message", false
	}
	if utf8.RuneCountInString(message) > MaxMessageChars {
		return http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "Message too long", false
	}
	return 0, 0, "", true
}
