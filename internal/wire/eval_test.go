package wire

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appChat "github.com/tourassist/backend/internal/application/chat"
	appEval "github.com/tourassist/backend/internal/application/eval"
	appRAG "github.com/tourassist/backend/internal/application/rag"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/llm"
	"github.com/tourassist/backend/internal/infrastructure/metrics"
	"github.com/tourassist/backend/internal/infrastructure/storage"
	"github.com/tourassist/backend/internal/infrastructure/vector"
)

// newEvalApp wires an EvalApp on dbPath with a fresh in-process index, as the
// CLI sees it after the server that ingested the documents has exited
func newEvalApp(t *testing.T, dbPath string) (*EvalApp, *appTenant.Service, *appRAG.IngestionService) {
	t.Helper()

	db, err := storage.OpenDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ragCfg := &config.RAGConfig{MaxChunkChars: 800, TopK: 4, MaxFileSizeMB: 1}
	tenants := appTenant.NewService(storage.NewTenantRepository(db))
	chunks := storage.NewChunkRepository(db)
	embedder := embedding.NewCacheService(storage.NewEmbeddingCacheRepository(db), nil, 32)
	backend := vector.NewMemoryBackend()
	index := vector.NewIndexManager(backend, "chunks", chunks, embedder)
	ingestion := appRAG.NewIngestionService(storage.NewDocumentRepository(db), chunks, embedder, index, ragCfg)
	retrieval := appRAG.NewRetrievalService(embedder, index, ragCfg)
	orchestrator := appChat.NewOrchestrator(
		retrieval,
		appChat.NewOpeningHoursRouter(),
		appChat.NewSessionMemory(appChat.DefaultMaxTurns, 0),
		llm.NewClient(&config.ProviderConfig{Timeout: time.Second}),
		metrics.NewStore(metrics.DefaultWindow),
	)
	harness := appEval.NewHarness(orchestrator, retrieval, &config.EvalConfig{Timeout: 5 * time.Second})

	return NewEvalApp(harness, tenants, backend, index), tenants, ingestion
}

func TestEvalApp_RunRebuildsVolatileIndex(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "eval.db")

	_, tenants, ingestion := newEvalApp(t, dbPath)
	_, err := tenants.Create(ctx, "museum")
	require.NoError(t, err)
	_, err = ingestion.Ingest(ctx, "museum", "guide.txt", []byte("The museum opens at 10am daily."))
	require.NoError(t, err)

	casesPath := filepath.Join(dir, "cases.yaml")
	require.NoError(t, os.WriteFile(casesPath, []byte(`
- id: q1
  question: Tell me about the collection
  expected_facts: ["museum"]
  allowed_sources: ["guide.txt"]
  safety: [no_booking]
`), 0o644))

	app, _, _ := newEvalApp(t, dbPath)
	out := filepath.Join(dir, "out")
	summary, err := app.Run(ctx, "museum", casesPath, out)
	require.NoError(t, err)

	assert.Equal(t, "museum", summary.TenantID)
	assert.Equal(t, 1, summary.CaseCount)
	assert.Equal(t, 1.0, summary.Metrics.RetrievalPass)
	assert.Equal(t, 0, summary.Metrics.SafetyViolations)
	assert.FileExists(t, filepath.Join(out, appEval.SummaryFile))
}

func TestEvalApp_RunRejectsUnknownTenant(t *testing.T) {
	dir := t.TempDir()
	app, _, _ := newEvalApp(t, filepath.Join(dir, "eval.db"))

	_, err := app.Run(context.Background(), "ghost", filepath.Join(dir, "missing.json"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tenant "ghost" not found`)
}
