package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	domainTenant "github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

// TenantHandler tenant registration
type TenantHandler struct {
	tenants *appTenant.Service
	logger  *slog.Logger
}

// NewTenantHandler creates the tenant handler
func NewTenantHandler(tenants *appTenant.Service) *TenantHandler {
	return &TenantHandler{
		tenants: tenants,
		logger:  log.NewModuleLogger("http", "tenant"),
	}
}

// CreateTenantRequest tenant registration body
type CreateTenantRequest struct {
	TenantID string `json:"tenant_id" binding:"required,min=2,max=64"`
}

// Create registers a tenant and returns its API key
// @Summary Create tenant
// @Description Registers a tenant and returns its API key. The key is only shown once.
// @Tags Tenants
// @Accept json
// @Produce json
// @Param request body CreateTenantRequest true "Tenant"
// @Success 200 {object} appTenant.Credentials
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidRequest, "Invalid tenant ID", err.Error())
		return
	}

	creds, err := h.tenants.Create(c.Request.Context(), req.TenantID)
	if errors.Is(err, domainTenant.ErrTenantExists) {
		response.Error(c, http.StatusConflict, response.CodeTenantExists, "Tenant already exists")
		return
	}
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}

	response.Success(c, creds)
}
