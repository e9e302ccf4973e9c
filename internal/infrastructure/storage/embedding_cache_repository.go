package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
)

var _ domainRAG.EmbeddingCacheRepository = (*EmbeddingCacheRepositoryImpl)(nil)

// EmbeddingCacheRepositoryImpl stores embedding vectors as JSON keyed by text hash
type EmbeddingCacheRepositoryImpl struct {
	db *sql.DB
}

// NewEmbeddingCacheRepository creates an embedding cache repository
func NewEmbeddingCacheRepository(db *sql.DB) domainRAG.EmbeddingCacheRepository {
	return &EmbeddingCacheRepositoryImpl{db: db}
}

// Get returns the cached vector for textHash, or nil on a miss
func (r *EmbeddingCacheRepositoryImpl) Get(ctx context.Context, textHash string) ([]float32, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT vector_json FROM embedding_cache WHERE text_hash = ?`, textHash).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}

	var vector []float32
	if err := json.Unmarshal([]byte(raw), &vector); err != nil {
		return nil, fmt.Errorf("corrupt embedding cache entry %s: %w", textHash, err)
	}
	return vector, nil
}

// Put writes or replaces the vector for textHash
func (r *EmbeddingCacheRepositoryImpl) Put(ctx context.Context, textHash string, vector []float32) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embedding_cache (text_hash, vector_json, dims) VALUES (?, ?, ?)`,
		textHash, string(raw), len(vector),
	)
	if err != nil {
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}
	return nil
}
