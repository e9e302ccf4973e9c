package vector

import (
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// ProvideBackend selects the backend named by the configuration
func ProvideBackend(cfg *config.VectorConfig) (Backend, func(), error) {
	logger := log.NewModuleLogger("vector", "backend")

	if cfg.Backend == config.VectorBackendMemory {
		logger.Info("Using in-process vector backend")
		b := NewMemoryBackend()
		return b, func() { _ = b.Close() }, nil
	}

	b, err := NewQdrantBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using qdrant vector backend",
		"host", cfg.Host,
		"grpc_port", cfg.GRPCPort,
		"tls", cfg.UseTLS,
		"collection", cfg.Collection,
	)
	cleanup := func() {
		if err := b.Close(); err != nil {
			logger.Warn("Failed to close qdrant client", "error", err)
		}
	}
	return b, cleanup, nil
}

// IsVolatile reports whether the backend loses its contents on restart
func IsVolatile(b Backend) bool {
	_, ok := b.(*MemoryBackend)
	return ok
}
