package vector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/storage"
)

const testCollection = "test_chunks"

type fixture struct {
	backend *MemoryBackend
	docs    domainRAG.DocumentRepository
	chunks  domainRAG.ChunkRepository
	cache   domainRAG.EmbeddingCacheRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &fixture{
		backend: NewMemoryBackend(),
		docs:    storage.NewDocumentRepository(db),
		chunks:  storage.NewChunkRepository(db),
		cache:   storage.NewEmbeddingCacheRepository(db),
	}
}

func (f *fixture) manager(dims int) *IndexManager {
	return NewIndexManager(f.backend, testCollection, f.chunks, embedding.NewCacheService(f.cache, nil, dims))
}

// seed stores a ready document with the given chunk texts and returns its chunks
func (f *fixture) seed(t *testing.T, tenantID, filename string, texts ...string) []*domainRAG.SourcedChunk {
	t.Helper()
	ctx := context.Background()
	docID := uuid.NewString()
	require.NoError(t, f.docs.Create(ctx, &domainRAG.Document{
		ID: docID, TenantID: tenantID, Filename: filename, ContentHash: docID, Status: domainRAG.DocumentStatusReady,
	}))

	chunks := make([]*domainRAG.Chunk, len(texts))
	sourced := make([]*domainRAG.SourcedChunk, len(texts))
	for i, text := range texts {
		chunks[i] = &domainRAG.Chunk{
			ID:             uuid.NewString(),
			TenantID:       tenantID,
			DocumentID:     docID,
			ChunkIndex:     i,
			Text:           text,
			VectorRecordID: uuid.NewString(),
		}
		sourced[i] = &domainRAG.SourcedChunk{Chunk: *chunks[i], Source: filename}
	}
	require.NoError(t, f.chunks.ReplaceChunks(ctx, docID, chunks))
	return sourced
}

func index(t *testing.T, m *IndexManager, chunks []*domainRAG.SourcedChunk) {
	t.Helper()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := m.embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)

	records := make([]domainRAG.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domainRAG.NewVectorRecord(c, vectors[i])
	}
	require.NoError(t, m.Upsert(context.Background(), records))
}

func TestIndexManager_UpsertCreatesCollection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(8)

	index(t, m, f.seed(t, "t1", "spa.txt", "The spa opens at 9am", "Massages cost 50 euros"))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Exists)
	assert.Equal(t, 8, stats.Dimensions)
	assert.Equal(t, 2, stats.Points)
}

func TestIndexManager_QueryIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(16)

	index(t, m, f.seed(t, "t1", "a.txt", "shared text"))
	index(t, m, f.seed(t, "t2", "b.txt", "shared text", "other text"))

	query := embedding.DeterministicVector("shared text", 16)

	hits, err := m.Query(ctx, query, "t1", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a.txt", hits[0].Source)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-4)

	hits, err = m.Query(ctx, query, "t2", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "shared text", hits[0].Text)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

	hits, err = m.Query(ctx, query, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexManager_QueryCreatesMissingCollection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := f.manager(8)

	hits, err := m.Query(ctx, embedding.DeterministicVector("q", 8), "t1", 4)
	require.NoError(t, err)
	assert.Empty(t, hits)

	size, exists, err := f.backend.CollectionSize(ctx, testCollection)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 8, size)
}

func TestIndexManager_DimensionChangeRebuildsFromChunkStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	old := f.manager(8)
	var texts []string
	for i := 0; i < ReindexBatchSize+6; i++ {
		texts = append(texts, fmt.Sprintf("chunk number %d", i))
	}
	index(t, old, f.seed(t, "t1", "big.txt", texts...))
	index(t, old, f.seed(t, "t2", "small.txt", "a lone chunk"))

	// restarted with a different embedding size
	m := f.manager(12)
	hits, err := m.Query(ctx, embedding.DeterministicVector("a lone chunk", 12), "t2", 3)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a lone chunk", hits[0].Text)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Dimensions)
	assert.Equal(t, len(texts)+1, stats.Points)
}

func TestIndexManager_Rebuild(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "t1", "guide.txt", "first", "second", "third")

	m := f.manager(8)
	require.NoError(t, m.Rebuild(ctx))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Points)

	// rebuilding twice leaves no duplicates
	require.NoError(t, m.Rebuild(ctx))
	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Points)
}

// blockingEmbedder stalls the first call until release is closed
type blockingEmbedder struct {
	embedding.Embedder
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (e *blockingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.once.Do(func() {
		close(e.started)
		<-e.release
	})
	return e.Embedder.EmbedTexts(ctx, texts)
}

func TestIndexManager_MismatchDuringRebuildConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	index(t, f.manager(8), f.seed(t, "t1", "guide.txt", "opening times"))

	slow := &blockingEmbedder{
		Embedder: embedding.NewCacheService(f.cache, nil, 12),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	m := NewIndexManager(f.backend, testCollection, f.chunks, slow)

	done := make(chan error, 1)
	go func() {
		_, err := m.Query(ctx, embedding.DeterministicVector("opening times", 12), "t1", 2)
		done <- err
	}()

	select {
	case <-slow.started:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild did not start")
	}

	// a request at the old size while the rebuild runs
	_, err := m.Query(ctx, embedding.DeterministicVector("opening times", 8), "t1", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainRAG.ErrReindexConflict))

	// requests at the new size are served by the fresh collection
	_, err = m.Query(ctx, embedding.DeterministicVector("opening times", 12), "t1", 2)
	require.NoError(t, err)

	close(slow.release)
	require.NoError(t, <-done)

	require.NoError(t, m.Rebuild(ctx))
}

// failingBackend fails every call the way an unreachable server would
type failingBackend struct{ MemoryBackend }

func (b *failingBackend) CollectionSize(context.Context, string) (int, bool, error) {
	return 0, false, fmt.Errorf("%w: connection refused", domainRAG.ErrIndexUnavailable)
}

func TestIndexManager_UnavailableBackend(t *testing.T) {
	f := newFixture(t)
	m := NewIndexManager(&failingBackend{}, testCollection, f.chunks, embedding.NewCacheService(f.cache, nil, 8))

	_, err := m.Query(context.Background(), embedding.DeterministicVector("q", 8), "t1", 4)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	err = m.Upsert(context.Background(), []domainRAG.VectorRecord{{ID: uuid.NewString(), Vector: make([]float32, 8)}})
	assert.True(t, IsUnavailable(err))
}

func TestIndexManager_RejectsMixedSizes(t *testing.T) {
	f := newFixture(t)
	m := f.manager(8)
	err := m.Upsert(context.Background(), []domainRAG.VectorRecord{
		{ID: uuid.NewString(), Vector: make([]float32, 8)},
		{ID: uuid.NewString(), Vector: make([]float32, 4)},
	})
	assert.Error(t, err)
}

func TestMemoryBackend_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.CreateCollection(ctx, "c", 4))
	require.NoError(t, b.Upsert(ctx, "c", []domainRAG.VectorRecord{{
		ID:      uuid.NewString(),
		Vector:  []float32{1, 0, 0, 0},
		Payload: domainRAG.VectorPayload{TenantID: "t1", DocumentID: "d1", Text: "x", Source: "x.txt"},
	}}))

	hits, err := b.Search(ctx, "c", []float32{1, 0, 0, 0}, "t1", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "d1", hits[0].DocumentID)

	_, err = b.Search(ctx, "c", []float32{1, 0}, "t1", 10)
	assert.Error(t, err)

	require.Error(t, b.CreateCollection(ctx, "c", 4))
	require.NoError(t, b.DeleteCollection(ctx, "c"))
	_, exists, err := b.CollectionSize(ctx, "c")
	require.NoError(t, err)
	assert.False(t, exists)
}
