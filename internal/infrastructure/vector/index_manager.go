package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// ReindexBatchSize is the number of chunks embedded and upserted per rebuild step
const ReindexBatchSize = 64

// IndexStats describes the collection
type IndexStats struct {
	Collection string `json:"collection"`
	Dimensions int    `json:"dimensions"`
	Points     int    `json:"points"`
	Exists     bool   `json:"exists"`
}

// IndexManager owns the shared collection. Before every upsert or query it
// checks the collection's vector size; on a mismatch it drops the collection,
// recreates it and rebuilds it from the chunk store. At most one rebuild runs
// at a time.
type IndexManager struct {
	backend    Backend
	collection string
	chunks     domainRAG.ChunkRepository
	embedder   embedding.Embedder
	logger     *slog.Logger

	// mu serializes the size check with delete/recreate
	mu sync.Mutex
	// reindexSlot holds a token while a rebuild runs
	reindexSlot chan struct{}
}

// NewIndexManager creates an index manager
func NewIndexManager(backend Backend, collection string, chunks domainRAG.ChunkRepository, embedder embedding.Embedder) *IndexManager {
	return &IndexManager{
		backend:     backend,
		collection:  collection,
		chunks:      chunks,
		embedder:    embedder,
		logger:      log.NewModuleLogger("vector", "index"),
		reindexSlot: make(chan struct{}, 1),
	}
}

// ProvideIndexManager wires the manager to the configured collection
func ProvideIndexManager(backend Backend, cfg *config.VectorConfig, chunks domainRAG.ChunkRepository, embedder embedding.Embedder) *IndexManager {
	return NewIndexManager(backend, cfg.Collection, chunks, embedder)
}

// Upsert writes records, creating or rebuilding the collection to fit their size
func (m *IndexManager) Upsert(ctx context.Context, records []domainRAG.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	size := len(records[0].Vector)
	for _, r := range records[1:] {
		if len(r.Vector) != size {
			return fmt.Errorf("mixed vector sizes in batch: %d and %d", size, len(r.Vector))
		}
	}

	if err := m.ensureCollection(ctx, size); err != nil {
		return err
	}
	return m.backend.Upsert(ctx, m.collection, records)
}

// Query returns up to topK of tenantID's chunks nearest to vector, best first
func (m *IndexManager) Query(ctx context.Context, vector []float32, tenantID string, topK int) ([]domainRAG.ScoredChunk, error) {
	if topK <= 0 {
		return []domainRAG.ScoredChunk{}, nil
	}
	if err := m.ensureCollection(ctx, len(vector)); err != nil {
		return nil, err
	}
	return m.backend.Search(ctx, m.collection, vector, tenantID, topK)
}

// Rebuild recreates the collection at the embedder's size and reloads every
// chunk. Used at startup for volatile backends.
func (m *IndexManager) Rebuild(ctx context.Context) error {
	size := m.embedder.Dimensions()

	if !m.tryAcquireSlot() {
		return domainRAG.ErrReindexConflict
	}
	defer m.releaseSlot()

	m.mu.Lock()
	err := m.recreate(ctx, size)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.reload(ctx, size)
}

// Stats reports the collection's size and point count
func (m *IndexManager) Stats(ctx context.Context) (*IndexStats, error) {
	stats := &IndexStats{Collection: m.collection}
	size, exists, err := m.backend.CollectionSize(ctx, m.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return stats, nil
	}
	points, err := m.backend.Count(ctx, m.collection)
	if err != nil {
		return nil, err
	}
	stats.Exists = true
	stats.Dimensions = size
	stats.Points = points
	return stats, nil
}

func (m *IndexManager) ensureCollection(ctx context.Context, size int) error {
	m.mu.Lock()

	existing, exists, err := m.backend.CollectionSize(ctx, m.collection)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !exists {
		err = m.backend.CreateCollection(ctx, m.collection, size)
		m.mu.Unlock()
		return err
	}
	if existing == size {
		m.mu.Unlock()
		return nil
	}

	if !m.tryAcquireSlot() {
		m.mu.Unlock()
		return fmt.Errorf("%w: collection has %d dimensions, requested %d", domainRAG.ErrReindexConflict, existing, size)
	}
	defer m.releaseSlot()

	m.logger.Warn("Vector size mismatch, rebuilding collection",
		"collection", m.collection,
		"existing_size", existing,
		"requested_size", size,
	)
	err = m.recreate(ctx, size)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	// the new collection already accepts requests of the new size while the
	// rebuild streams; point ids are stable so concurrent writers do not duplicate
	return m.reload(ctx, size)
}

func (m *IndexManager) recreate(ctx context.Context, size int) error {
	_, exists, err := m.backend.CollectionSize(ctx, m.collection)
	if err != nil {
		return err
	}
	if exists {
		if err := m.backend.DeleteCollection(ctx, m.collection); err != nil {
			return err
		}
	}
	return m.backend.CreateCollection(ctx, m.collection, size)
}

func (m *IndexManager) reload(ctx context.Context, size int) error {
	total := 0
	err := m.chunks.StreamForReindex(ctx, ReindexBatchSize, func(batch []*domainRAG.SourcedChunk) error {
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := m.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed reindex batch: %w", err)
		}

		records := make([]domainRAG.VectorRecord, len(batch))
		for i, c := range batch {
			if len(vectors[i]) != size {
				return fmt.Errorf("reindex vector for chunk %s has %d dimensions, collection expects %d", c.ID, len(vectors[i]), size)
			}
			records[i] = domainRAG.NewVectorRecord(c, vectors[i])
		}
		if err := m.backend.Upsert(ctx, m.collection, records); err != nil {
			return err
		}
		total += len(records)
		return nil
	})
	if err != nil {
		m.logger.Error("Vector index rebuild incomplete",
			"collection", m.collection,
			"reindexed", total,
			"error", err,
		)
		return fmt.Errorf("rebuild collection %s: %w", m.collection, err)
	}

	if total == 0 {
		m.logger.Info("Vector index rebuilt, chunk store empty", "collection", m.collection)
	} else {
		m.logger.Info("Vector index rebuilt", "collection", m.collection, "chunks", total, "size", size)
	}
	return nil
}

func (m *IndexManager) tryAcquireSlot() bool {
	select {
	case m.reindexSlot <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *IndexManager) releaseSlot() {
	<-m.reindexSlot
}

// IsUnavailable reports whether err means the index backend could not be reached
func IsUnavailable(err error) bool {
	return errors.Is(err, domainRAG.ErrIndexUnavailable)
}
