package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

// setupTestDB opens a fresh database with the full schema
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestProvideDB_CreatesDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &config.DatabaseConfig{
		DataDir: filepath.Join(root, "data"),
		Path:    filepath.Join(root, "data", "nested", "tourassist.db"),
	}

	db, cleanup, err := ProvideDB(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.FileExists(t, cfg.Path)
	require.NoError(t, InitSchema(db), "schema creation must be idempotent")
}

func TestDocumentRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(setupTestDB(t))

	doc := &domainRAG.Document{
		ID:          "doc-1",
		TenantID:    "t1",
		Filename:    "guide.txt",
		ContentHash: "abc",
		Status:      domainRAG.DocumentStatusProcessing,
	}
	require.NoError(t, repo.Create(ctx, doc))
	assert.False(t, doc.CreatedAt.IsZero())

	found, err := repo.FindByHash(ctx, "t1", "abc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "doc-1", found.ID)
	assert.Equal(t, domainRAG.DocumentStatusProcessing, found.Status)

	missing, err := repo.FindByHash(ctx, "t2", "abc")
	require.NoError(t, err)
	assert.Nil(t, missing, "hash lookup is scoped to the tenant")

	require.NoError(t, repo.UpdateStatus(ctx, "doc-1", domainRAG.DocumentStatusReady))
	found, err = repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, found.IsReady())

	assert.Error(t, repo.UpdateStatus(ctx, "nope", domainRAG.DocumentStatusReady))
}

func TestDocumentRepository_DuplicateHash(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(setupTestDB(t))

	first := &domainRAG.Document{ID: "d1", TenantID: "t1", Filename: "a.txt", ContentHash: "same", Status: domainRAG.DocumentStatusReady}
	require.NoError(t, repo.Create(ctx, first))

	dup := &domainRAG.Document{ID: "d2", TenantID: "t1", Filename: "b.txt", ContentHash: "same", Status: domainRAG.DocumentStatusProcessing}
	assert.ErrorIs(t, repo.Create(ctx, dup), domainRAG.ErrDuplicateDocument)

	other := &domainRAG.Document{ID: "d3", TenantID: "t2", Filename: "a.txt", ContentHash: "same", Status: domainRAG.DocumentStatusProcessing}
	require.NoError(t, repo.Create(ctx, other), "another tenant may hold the same content")

	docs, err := repo.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestChunkRepository_ReplaceAndStream(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	docs := NewDocumentRepository(db)
	repo := NewChunkRepository(db)

	for _, id := range []string{"doc-b", "doc-a"} {
		require.NoError(t, docs.Create(ctx, &domainRAG.Document{
			ID: id, TenantID: "t1", Filename: id + ".txt", ContentHash: id, Status: domainRAG.DocumentStatusReady,
		}))
	}

	makeChunks := func(docID string, n int) []*domainRAG.Chunk {
		chunks := make([]*domainRAG.Chunk, n)
		for i := range chunks {
			chunks[i] = &domainRAG.Chunk{
				ID:             fmt.Sprintf("%s-c%d", docID, i),
				TenantID:       "t1",
				DocumentID:     docID,
				ChunkIndex:     i,
				Text:           fmt.Sprintf("%s text %d", docID, i),
				VectorRecordID: fmt.Sprintf("%s-v%d", docID, i),
			}
		}
		return chunks
	}

	require.NoError(t, repo.ReplaceChunks(ctx, "doc-b", makeChunks("doc-b", 3)))
	require.NoError(t, repo.ReplaceChunks(ctx, "doc-a", makeChunks("doc-a", 2)))
	// replacing again must not duplicate rows
	require.NoError(t, repo.ReplaceChunks(ctx, "doc-a", makeChunks("doc-a", 2)))

	count, err := repo.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	var batches [][]*domainRAG.SourcedChunk
	err = repo.StreamForReindex(ctx, 2, func(batch []*domainRAG.SourcedChunk) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2], 1)

	var order []string
	for _, b := range batches {
		for _, c := range b {
			order = append(order, fmt.Sprintf("%s/%d", c.DocumentID, c.ChunkIndex))
		}
	}
	assert.Equal(t, []string{"doc-a/0", "doc-a/1", "doc-b/0", "doc-b/1", "doc-b/2"}, order)
	assert.Equal(t, "doc-a.txt", batches[0][0].Source)

	chunks, err := repo.GetChunksByDocument(ctx, "doc-b")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "doc-b-v2", chunks[2].VectorRecordID)
}

func TestChunkRepository_RejectsForeignChunk(t *testing.T) {
	repo := NewChunkRepository(setupTestDB(t))
	err := repo.ReplaceChunks(context.Background(), "doc-a", []*domainRAG.Chunk{{ID: "c", DocumentID: "doc-b"}})
	assert.Error(t, err)
}

func TestEmbeddingCacheRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewEmbeddingCacheRepository(setupTestDB(t))

	miss, err := repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	vec := []float32{0, 1.0 / 255, 0.5, 1}
	require.NoError(t, repo.Put(ctx, "h1", vec))
	got, err := repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	require.NoError(t, repo.Put(ctx, "h1", []float32{0.25}))
	got, err = repo.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25}, got)
}

func TestTenantRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTenantRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &tenant.Tenant{ID: "t1", APIKey: "k1"}))
	assert.ErrorIs(t, repo.Create(ctx, &tenant.Tenant{ID: "t1", APIKey: "k2"}), tenant.ErrTenantExists)

	found, err := repo.FindByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "k1", found.APIKey)

	missing, err := repo.FindByID(ctx, "t9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
