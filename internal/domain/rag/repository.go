package rag

import "context"

// DocumentRepository persists documents
type DocumentRepository interface {
	// Create inserts a new document; returns ErrDuplicateDocument on a
	// (tenant_id, content_hash) conflict
	Create(ctx context.Context, doc *Document) error
	// FindByHash returns nil, nil when no document matches
	FindByHash(ctx context.Context, tenantID, contentHash string) (*Document, error)
	FindByID(ctx context.Context, documentID string) (*Document, error)
	UpdateStatus(ctx context.Context, documentID, status string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Document, error)
}

// ChunkRepository persists chunks; the chunk store is the source of truth for
// text and metadata, the vector index is rebuilt from it
type ChunkRepository interface {
	// ReplaceChunks atomically replaces every chunk of documentID with chunks
	ReplaceChunks(ctx context.Context, documentID string, chunks []*Chunk) error
	GetChunksByDocument(ctx context.Context, documentID string) ([]*Chunk, error)
	CountChunks(ctx context.Context) (int, error)
	// StreamForReindex calls fn with batches of at most batchSize chunks joined
	// with their document filename, ordered by (document_id, chunk_index)
	StreamForReindex(ctx context.Context, batchSize int, fn func(batch []*SourcedChunk) error) error
}

// EmbeddingCacheRepository stores vectors keyed by text hash
type EmbeddingCacheRepository interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, textHash string) ([]float32, error)
	Put(ctx context.Context, textHash string, vector []float32) error
}
