package storage

import (
	"context"
	"database/sql"
	"fmt"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
)

var _ domainRAG.ChunkRepository = (*ChunkRepositoryImpl)(nil)

// ChunkRepositoryImpl stores chunks in sqlite
type ChunkRepositoryImpl struct {
	db *sql.DB
}

// NewChunkRepository creates a chunk repository
func NewChunkRepository(db *sql.DB) domainRAG.ChunkRepository {
	return &ChunkRepositoryImpl{db: db}
}

// ReplaceChunks deletes the document's chunks and inserts the new set in one transaction
func (r *ChunkRepositoryImpl) ReplaceChunks(ctx context.Context, documentID string, chunks []*domainRAG.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (chunk_id, tenant_id, document_id, chunk_index, text, vector_record_id)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if c.DocumentID != documentID {
			return fmt.Errorf("chunk %s belongs to document %s, not %s", c.ID, c.DocumentID, documentID)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.TenantID, c.DocumentID, c.ChunkIndex, c.Text, c.VectorRecordID); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", c.ChunkIndex, err)
		}
	}

	return tx.Commit()
}

// GetChunksByDocument returns a document's chunks in reading order
func (r *ChunkRepositoryImpl) GetChunksByDocument(ctx context.Context, documentID string) ([]*domainRAG.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chunk_id, tenant_id, document_id, chunk_index, text, vector_record_id
		FROM chunks WHERE document_id = ? ORDER BY chunk_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*domainRAG.Chunk
	for rows.Next() {
		var c domainRAG.Chunk
		if err := rows.Scan(&c.ID, &c.TenantID, &c.DocumentID, &c.ChunkIndex, &c.Text, &c.VectorRecordID); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// CountChunks returns the number of persisted chunks across all tenants
func (r *ChunkRepositoryImpl) CountChunks(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// StreamForReindex pages through chunks JOIN documents ordered by (document_id, chunk_index)
func (r *ChunkRepositoryImpl) StreamForReindex(ctx context.Context, batchSize int, fn func(batch []*domainRAG.SourcedChunk) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	for offset := 0; ; offset += batchSize {
		batch, err := r.readReindexPage(ctx, batchSize, offset)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}

func (r *ChunkRepositoryImpl) readReindexPage(ctx context.Context, limit, offset int) ([]*domainRAG.SourcedChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.chunk_id, c.tenant_id, c.document_id, c.chunk_index, c.text, c.vector_record_id, d.filename
		FROM chunks c
		JOIN documents d ON d.document_id = c.document_id
		ORDER BY c.document_id, c.chunk_index
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks for reindex: %w", err)
	}
	defer rows.Close()

	batch := make([]*domainRAG.SourcedChunk, 0, limit)
	for rows.Next() {
		var c domainRAG.SourcedChunk
		if err := rows.Scan(&c.ID, &c.TenantID, &c.DocumentID, &c.ChunkIndex, &c.Text, &c.VectorRecordID, &c.Source); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		batch = append(batch, &c)
	}
	return batch, rows.Err()
}
