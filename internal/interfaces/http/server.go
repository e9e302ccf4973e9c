package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/interfaces/http/handler"
	"github.com/tourassist/backend/internal/interfaces/http/middleware"
	"github.com/tourassist/backend/internal/interfaces/mcp"

	_ "github.com/tourassist/backend/docs" // Swagger docs
)

// HTTPServer HTTP server
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer registers every route
func NewServer(
	cfg *config.ServerConfig,
	tenantHandler *handler.TenantHandler,
	ingestHandler *handler.IngestHandler,
	chatHandler *handler.ChatHandler,
	metricsHandler *handler.MetricsHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	if !log.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.EnsureUTF8Body())

	router.POST("/tenants", tenantHandler.Create)
	router.POST("/ingest", ingestHandler.Ingest)
	router.POST("/ingest/folder", ingestHandler.IngestFolder)
	router.POST("/chat", chatHandler.Chat)
	router.GET("/chat/ws", chatHandler.ChatSocket)
	router.GET("/metrics", metricsHandler.Latency)
	router.GET("/metrics/prometheus", metricsHandler.Prometheus())

	router.GET("/health", handler.Health)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE endpoint
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: cfg.HTTPPort,
		server: &http.Server{
			Addr:              cfg.HTTPPort,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log.NewModuleLogger("http", "server"),
	}
}

// Handler returns the router, used by tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start serves on listener until Shutdown, or listens on the configured port
// when listener is nil. http.ErrServerClosed is not an error.
func (s *HTTPServer) Start(listener net.Listener) error {
	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	var err error
	if listener != nil {
		err = s.server.Serve(listener)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown graceful shutdown
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Stop stops the server
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
