package infrastructure

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/discovery"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/llm"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/metrics"
	"github.com/tourassist/backend/internal/infrastructure/storage"
	"github.com/tourassist/backend/internal/infrastructure/vector"
	"github.com/tourassist/backend/internal/infrastructure/watcher"
)

// ProviderSet infrastructure providers
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	embedding.ProviderSet,
	vector.ProviderSet,
	llm.ProviderSet,
	metrics.ProviderSet,
	watcher.ProviderSet,
	discovery.ProviderSet,
	log.ProviderSet,
)
