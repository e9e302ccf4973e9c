package watcher

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/domain/events"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

// ProvideEventBus provides the process event bus; the cleanup drains handlers
func ProvideEventBus() (events.EventBus, func()) {
	bus := NewEventBus()
	return bus, bus.Close
}

// ProvideInboxWatcher provides the inbox watcher, disabled when no directory is configured
func ProvideInboxWatcher(cfg *config.InboxConfig, eventBus events.EventBus) (*InboxWatcher, error) {
	return NewInboxWatcher(InboxConfig{
		Dir:           cfg.Dir,
		DebounceDelay: cfg.Debounce,
		Extensions:    domainRAG.SupportedExtensions,
	}, eventBus)
}

// ProviderSet watcher providers
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideInboxWatcher,
)
