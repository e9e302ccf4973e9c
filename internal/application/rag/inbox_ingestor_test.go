package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourassist/backend/internal/domain/events"
	"github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/watcher"
)

func writeInboxFile(t *testing.T, tenantID, name, content string) *events.InboxFileEvent {
	t.Helper()
	dir := filepath.Join(t.TempDir(), tenantID)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return &events.InboxFileEvent{
		EventType: events.InboxFileReady,
		TenantID:  tenantID,
		FilePath:  path,
		FileSize:  int64(len(content)),
		EventTime: time.Now(),
	}
}

func TestInboxIngestor_IngestsKnownTenant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.tenants.Create(ctx, &tenant.Tenant{ID: "t1", APIKey: "k1"}))

	bus := watcher.NewEventBus()
	ingestor := NewInboxIngestor(env.ingestion, env.tenants, bus, env.ragCfg)
	ingestor.Start()

	event := writeInboxFile(t, "t1", "guide.txt", guide)
	bus.Publish(event)
	bus.Close()
	ingestor.Stop()

	doc, err := env.documents.FindByHash(ctx, "t1", HashContent([]byte(guide)))
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.True(t, doc.IsReady())
	assert.Equal(t, "guide.txt", doc.Filename)
}

func TestInboxIngestor_SkipsUnknownTenant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ingestor := NewInboxIngestor(env.ingestion, env.tenants, watcher.NewEventBus(), env.ragCfg)

	require.NoError(t, ingestor.handleReady(writeInboxFile(t, "ghost", "guide.txt", guide)))

	docs, err := env.documents.ListByTenant(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInboxIngestor_SkipsOversizedFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.tenants.Create(ctx, &tenant.Tenant{ID: "t1", APIKey: "k1"}))
	ingestor := NewInboxIngestor(env.ingestion, env.tenants, watcher.NewEventBus(), env.ragCfg)

	event := writeInboxFile(t, "t1", "big.txt", "small body")
	event.FileSize = env.ragCfg.MaxFileSizeBytes() + 1
	require.NoError(t, ingestor.handleReady(event))

	docs, err := env.documents.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInboxIngestor_MissingFileFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	require.NoError(t, env.tenants.Create(ctx, &tenant.Tenant{ID: "t1", APIKey: "k1"}))
	ingestor := NewInboxIngestor(env.ingestion, env.tenants, watcher.NewEventBus(), env.ragCfg)

	err := ingestor.handleReady(&events.InboxFileEvent{
		EventType: events.InboxFileReady,
		TenantID:  "t1",
		FilePath:  filepath.Join(t.TempDir(), "gone.txt"),
	})
	assert.Error(t, err)
}
