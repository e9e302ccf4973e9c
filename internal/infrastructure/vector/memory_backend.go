package vector

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
)

// MemoryBackend keeps collections in process with chromem-go. Contents are
// lost on restart, so the index manager rebuilds it from the chunk store.
type MemoryBackend struct {
	db *chromem.DB

	mu    sync.RWMutex
	sizes map[string]int
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-process backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		db:    chromem.NewDB(),
		sizes: make(map[string]int),
	}
}

// CollectionSize returns the size recorded at creation
func (b *MemoryBackend) CollectionSize(_ context.Context, name string) (int, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	size, ok := b.sizes[name]
	return size, ok, nil
}

// CreateCollection creates name; vectors are always supplied by the caller
func (b *MemoryBackend) CreateCollection(_ context.Context, name string, size int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sizes[name]; ok {
		return fmt.Errorf("collection %s already exists", name)
	}
	metadata := map[string]string{"size": strconv.Itoa(size)}
	if _, err := b.db.CreateCollection(name, metadata, noEmbedding); err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	b.sizes[name] = size
	return nil
}

// DeleteCollection drops name if present
func (b *MemoryBackend) DeleteCollection(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	delete(b.sizes, name)
	return nil
}

// Upsert adds or overwrites records by id
func (b *MemoryBackend) Upsert(ctx context.Context, name string, records []domainRAG.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	col, size, err := b.collection(name)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != size {
			return fmt.Errorf("record %s has %d dimensions, collection %s expects %d", r.ID, len(r.Vector), name, size)
		}
		docs = append(docs, chromem.Document{
			ID:      r.ID,
			Content: r.Payload.Text,
			Metadata: map[string]string{
				domainRAG.PayloadTenantID:   r.Payload.TenantID,
				domainRAG.PayloadDocumentID: r.Payload.DocumentID,
				domainRAG.PayloadChunkIndex: strconv.Itoa(r.Payload.ChunkIndex),
				domainRAG.PayloadSource:     r.Payload.Source,
			},
			Embedding: r.Vector,
		})
	}

	// embeddings are precomputed, concurrency only matters for embedding calls
	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("add documents to %s: %w", name, err)
	}
	return nil
}

// Search queries name restricted to tenantID
func (b *MemoryBackend) Search(ctx context.Context, name string, vector []float32, tenantID string, limit int) ([]domainRAG.ScoredChunk, error) {
	col, size, err := b.collection(name)
	if err != nil {
		return nil, err
	}
	if len(vector) != size {
		return nil, fmt.Errorf("query has %d dimensions, collection %s expects %d", len(vector), name, size)
	}

	// chromem requires nResults <= document count
	count := col.Count()
	if count == 0 || limit <= 0 {
		return []domainRAG.ScoredChunk{}, nil
	}
	if limit > count {
		limit = count
	}

	where := map[string]string{domainRAG.PayloadTenantID: tenantID}
	hits, err := col.QueryEmbedding(ctx, vector, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}

	results := make([]domainRAG.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domainRAG.ScoredChunk{
			DocumentID: hit.Metadata[domainRAG.PayloadDocumentID],
			Text:       hit.Content,
			Source:     hit.Metadata[domainRAG.PayloadSource],
			Score:      hit.Similarity,
		})
	}
	return results, nil
}

// Count returns the number of stored records
func (b *MemoryBackend) Count(_ context.Context, name string) (int, error) {
	col, _, err := b.collection(name)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Close is a no-op
func (b *MemoryBackend) Close() error {
	return nil
}

func (b *MemoryBackend) collection(name string) (*chromem.Collection, int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	size, ok := b.sizes[name]
	if !ok {
		return nil, 0, fmt.Errorf("collection %s does not exist", name)
	}
	col := b.db.GetCollection(name, noEmbedding)
	if col == nil {
		return nil, 0, fmt.Errorf("collection %s does not exist", name)
	}
	return col, size, nil
}

// noEmbedding rejects content-only documents; every record carries its vector
func noEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("vector must be provided by the caller")
}
