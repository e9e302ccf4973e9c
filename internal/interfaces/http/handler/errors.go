package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	domainTenant "github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

// APIKeyHeader carries the tenant API key
const APIKeyHeader = "X-API-Key"

// writeAuthError maps a credential check failure to 401 or 403
func writeAuthError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domainTenant.ErrMissingCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeMissingAPIKey, "Missing API key")
	case errors.Is(err, domainTenant.ErrInvalidCredentials):
		response.Error(c, http.StatusForbidden, response.CodeInvalidAPIKey, "Invalid API key")
	default:
		log.FromContext(c.Request.Context(), logger).Error("Credential check failed", "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}

// writeServiceError maps an ingestion or chat failure to a status code
func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	log.FromContext(c.Request.Context(), logger).Error("Request failed", "error", err)

	switch {
	case errors.Is(err, domainRAG.ErrReindexConflict):
		response.ErrorWithDetail(c, http.StatusServiceUnavailable, response.CodeReindexConflict,
			"The document index is being rebuilt for a new embedding size", err.Error())
	case errors.Is(err, domainRAG.ErrIndexUnavailable):
		response.ErrorWithDetail(c, http.StatusServiceUnavailable, response.CodeIndexUnavailable,
			"The document index is unavailable", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal error")
	}
}
