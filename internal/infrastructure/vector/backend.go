// Package vector manages the tenant-partitioned vector collection
package vector

import (
	"context"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
)

// Backend is a vector engine holding named collections of fixed-size vectors
// compared by cosine similarity
type Backend interface {
	// CollectionSize returns the vector size of name and whether it exists
	CollectionSize(ctx context.Context, name string) (size int, exists bool, err error)
	CreateCollection(ctx context.Context, name string, size int) error
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, name string, records []domainRAG.VectorRecord) error
	// Search returns up to limit hits whose tenant_id payload equals tenantID, best first
	Search(ctx context.Context, name string, vector []float32, tenantID string, limit int) ([]domainRAG.ScoredChunk, error)
	Count(ctx context.Context, name string) (int, error)
	Close() error
}
