package wire

import (
	"context"
	"log/slog"
	"net"

	appRAG "github.com/tourassist/backend/internal/application/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/discovery"
	applog "github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/vector"
	"github.com/tourassist/backend/internal/infrastructure/watcher"
	"github.com/tourassist/backend/internal/interfaces"
	"github.com/tourassist/backend/internal/interfaces/mcp"
)

// App composes the server process
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer

	serverCfg  *config.ServerConfig
	backend    vector.Backend
	index      *vector.IndexManager
	ingestor   *appRAG.InboxIngestor
	inbox      *watcher.InboxWatcher
	advertiser *discovery.Advertiser
	errCh      chan error
	logger     *slog.Logger
}

// NewApp creates the application
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	serverCfg *config.ServerConfig,
	backend vector.Backend,
	index *vector.IndexManager,
	ingestor *appRAG.InboxIngestor,
	inbox *watcher.InboxWatcher,
	advertiser *discovery.Advertiser,
) *App {
	return &App{
		HTTPServer: httpServer,
		MCPServer:  mcpServer,
		serverCfg:  serverCfg,
		backend:    backend,
		index:      index,
		ingestor:   ingestor,
		inbox:      inbox,
		advertiser: advertiser,
		errCh:      make(chan error, 1),
		logger:     applog.NewModuleLogger("app", "main"),
	}
}

// Start restores the index, starts the background services and serves HTTP
// on listener
func (a *App) Start(ctx context.Context, listener net.Listener) error {
	a.logger.Info("Starting TourAssist backend")

	// The in-process backend starts empty; reload it from sqlite
	if vector.IsVolatile(a.backend) {
		if err := a.index.Rebuild(ctx); err != nil {
			return err
		}
		a.logger.Info("Vector index rebuilt from stored chunks")
	}

	a.ingestor.Start()
	if err := a.inbox.Start(); err != nil {
		a.logger.Error("Failed to start inbox watcher",
			"error", err,
		)
	}

	info, err := discovery.BuildServiceInfo(a.serverCfg.HTTPPort, mcp.ServerVersion)
	if err == nil {
		err = a.advertiser.Start(info)
	}
	if err != nil {
		a.logger.Warn("mDNS advertisement unavailable",
			"error", err,
		)
	}

	go func() {
		if err := a.HTTPServer.Start(listener); err != nil {
			a.logger.Error("HTTP server failed",
				"error", err,
			)
			a.errCh <- err
		}
	}()

	a.logger.Info("TourAssist backend started",
		"port", a.serverCfg.HTTPPort,
	)
	return nil
}

// Errors reports a fatal HTTP server failure
func (a *App) Errors() <-chan error {
	return a.errCh
}

// Stop stops serving and the background services. Storage and the vector
// backend are released by the injector's cleanup.
func (a *App) Stop() error {
	a.logger.Info("Stopping TourAssist backend")

	a.advertiser.Stop()
	a.inbox.Stop()
	a.ingestor.Stop()

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}
	if err := a.MCPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop MCP server",
			"error", err,
		)
		return err
	}

	a.logger.Info("TourAssist backend stopped")
	return nil
}
