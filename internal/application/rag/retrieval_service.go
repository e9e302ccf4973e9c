package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// RetrievalService finds a tenant's chunks nearest to a query
type RetrievalService struct {
	embedder embedding.Embedder
	index    VectorIndex
	topK     int
	logger   *slog.Logger
}

// NewRetrievalService creates the retrieval service
func NewRetrievalService(embedder embedding.Embedder, index VectorIndex, cfg *config.RAGConfig) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		topK:     cfg.TopK,
		logger:   log.NewModuleLogger("rag", "retrieval"),
	}
}

// Retrieve returns at most top_k chunks of tenantID, best first. An unusable
// index yields an empty result; only a reindex conflict is returned.
func (s *RetrievalService) Retrieve(ctx context.Context, tenantID, query string) ([]domainRAG.ScoredChunk, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.index.Query(ctx, vectors[0], tenantID, s.topK)
	if err != nil {
		if errors.Is(err, domainRAG.ErrReindexConflict) {
			return nil, err
		}
		log.FromContext(ctx, s.logger).Error("Vector query failed, continuing without context",
			"tenant_id", tenantID,
			"error", err,
		)
		return []domainRAG.ScoredChunk{}, nil
	}
	return results, nil
}
