package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tourassist/backend/internal/infrastructure/metrics"
	"github.com/tourassist/backend/internal/interfaces/http/response"
)

// MetricsHandler latency metrics
type MetricsHandler struct {
	store *metrics.Store
}

// NewMetricsHandler creates the metrics handler
func NewMetricsHandler(store *metrics.Store) *MetricsHandler {
	return &MetricsHandler{store: store}
}

// LatencyResponse rolling latency percentiles
type LatencyResponse struct {
	LatencyP50Ms float64 `json:"latency_p50_ms"`
	LatencyP95Ms float64 `json:"latency_p95_ms"`
}

// Latency returns p50 and p95 chat latency over the recent window
// @Summary Latency metrics
// @Tags Metrics
// @Produce json
// @Success 200 {object} LatencyResponse
// @Router /metrics [get]
func (h *MetricsHandler) Latency(c *gin.Context) {
	response.Success(c, LatencyResponse{
		LatencyP50Ms: h.store.LatencyP50(),
		LatencyP95Ms: h.store.LatencyP95(),
	})
}

// Prometheus exposes the collectors in text exposition format
// @Summary Prometheus metrics
// @Tags Metrics
// @Produce plain
// @Success 200 {string} string
// @Router /metrics/prometheus [get]
func (h *MetricsHandler) Prometheus() gin.HandlerFunc {
	handler := h.store.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// ServiceName identifies this API in the health response
const ServiceName = "tourassist"

// Health liveness probe
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
}
