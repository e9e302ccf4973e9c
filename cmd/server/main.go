// @title TourAssist API
// @version 1.0
// @description Multi-tenant retrieval-augmented question answering for tourism documents
// @host localhost:8000
// @BasePath /
// @schemes http
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tourassist/backend/internal/infrastructure/config"
	applog "github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/singleton"
	"github.com/tourassist/backend/internal/wire"
)

func main() {
	applog.Init(nil)

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	listener, err := singleton.CheckAndLock(cfg.Server.HTTPPort)
	if err != nil {
		log.Fatalf("single instance check failed: %v", err)
	}
	if listener == nil {
		log.Println("another TourAssist instance is already running, exiting")
		os.Exit(0)
	}

	app, cleanup, err := wire.InitializeApp()
	if err != nil {
		_ = listener.Close()
		applog.GetLogger().Error("Failed to initialize application",
			"error", err,
		)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The HTTP server takes over the locked listener
	if err := app.Start(ctx, listener); err != nil {
		_ = listener.Close()
		applog.GetLogger().Error("Failed to start application",
			"error", err,
		)
		cleanup()
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case err := <-app.Errors():
		applog.GetLogger().Error("Server error", "error", err)
	}

	applog.GetLogger().Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		applog.GetLogger().Error("Error during application shutdown",
			"error", err,
		)
	}
	applog.GetLogger().Info("Application stopped")
}
