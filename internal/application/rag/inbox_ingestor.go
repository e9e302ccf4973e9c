package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tourassist/backend/internal/domain/events"
	"github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// InboxIngestor ingests files reported by the inbox watcher
type InboxIngestor struct {
	ingestion *IngestionService
	tenants   tenant.Repository
	bus       events.EventBus
	maxBytes  int64
	timeout   time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	unsubs []func()
}

// NewInboxIngestor creates an inbox ingestor
func NewInboxIngestor(ingestion *IngestionService, tenants tenant.Repository, bus events.EventBus, cfg *config.RAGConfig) *InboxIngestor {
	return &InboxIngestor{
		ingestion: ingestion,
		tenants:   tenants,
		bus:       bus,
		maxBytes:  cfg.MaxFileSizeBytes(),
		timeout:   2 * time.Minute,
		logger:    log.NewModuleLogger("rag", "inbox"),
	}
}

// Start subscribes to inbox events
func (i *InboxIngestor) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.unsubs = append(i.unsubs,
		i.bus.Subscribe(events.InboxFileReady, events.HandlerFunc(i.handleReady)),
		i.bus.Subscribe(events.InboxFileRemoved, events.HandlerFunc(i.handleRemoved)),
	)
}

// Stop unsubscribes
func (i *InboxIngestor) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, unsub := range i.unsubs {
		unsub()
	}
	i.unsubs = nil
}

func (i *InboxIngestor) handleReady(event events.Event) error {
	e, ok := event.(*events.InboxFileEvent)
	if !ok {
		return nil
	}
	filename := filepath.Base(e.FilePath)

	if e.FileSize > i.maxBytes {
		i.logger.Warn("Inbox file exceeds size limit, skipped",
			"tenant_id", e.TenantID,
			"path", e.FilePath,
			"size", e.FileSize,
			"limit", i.maxBytes,
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()
	ctx = log.WithTenantID(ctx, e.TenantID)

	t, err := i.tenants.FindByID(ctx, e.TenantID)
	if err != nil {
		return fmt.Errorf("failed to look up tenant %s: %w", e.TenantID, err)
	}
	if t == nil {
		i.logger.Warn("Inbox directory has no matching tenant, skipped",
			"tenant_id", e.TenantID,
			"path", e.FilePath,
		)
		return nil
	}

	raw, err := os.ReadFile(e.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read inbox file: %w", err)
	}
	// the file may have grown after the event was emitted
	if int64(len(raw)) > i.maxBytes {
		i.logger.Warn("Inbox file exceeds size limit, skipped", "path", e.FilePath, "size", len(raw))
		return nil
	}

	result, err := i.ingestion.Ingest(ctx, e.TenantID, filename, raw)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", e.FilePath, err)
	}

	i.logger.Info("Inbox file ingested",
		"tenant_id", e.TenantID,
		"filename", filename,
		"document_id", result.DocumentID,
		"chunks_indexed", result.ChunksIndexed,
	)
	return nil
}

// handleRemoved only logs; documents outlive their inbox files
func (i *InboxIngestor) handleRemoved(event events.Event) error {
	if e, ok := event.(*events.InboxFileEvent); ok {
		i.logger.Debug("Inbox file removed", "tenant_id", e.TenantID, "path", e.FilePath)
	}
	return nil
}
