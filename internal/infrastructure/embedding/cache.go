package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

const (
	hotTierTTL     = time.Hour
	hotTierCleanup = 10 * time.Minute

	// MaxProviderBatch caps the inputs of one provider request
	MaxProviderBatch = 64
)

// Embedder turns texts into vectors, same length and order as the input
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// CacheService is the embedding cache. Lookups go through an in-process hot
// tier, then the durable store; misses are computed by the provider or, when no
// provider is configured or it fails, by DeterministicVector.
type CacheService struct {
	repo     domainRAG.EmbeddingCacheRepository
	provider Provider // nil when no credential is configured
	dims     int
	hot      *gocache.Cache
	logger   *slog.Logger
}

var _ Embedder = (*CacheService)(nil)

// NewCacheService creates an embedding cache; provider may be nil
func NewCacheService(repo domainRAG.EmbeddingCacheRepository, provider Provider, dims int) *CacheService {
	return &CacheService{
		repo:     repo,
		provider: provider,
		dims:     dims,
		hot:      gocache.New(hotTierTTL, hotTierCleanup),
		logger:   log.NewModuleLogger("embedding", "cache"),
	}
}

// ProvideProvider returns the HTTP client when an API key is configured, else nil
func ProvideProvider(cfg *config.ProviderConfig) Provider {
	if cfg.APIKey == "" {
		return nil
	}
	return NewClient(cfg)
}

// ProvideCacheService wires the cache with the configured dimensionality
func ProvideCacheService(repo domainRAG.EmbeddingCacheRepository, provider Provider, cfg *config.ProviderConfig) *CacheService {
	return NewCacheService(repo, provider, cfg.EmbedDims)
}

// Dimensions returns the configured vector size
func (s *CacheService) Dimensions() int {
	return s.dims
}

// EmbedTexts returns a vector per text. Provider failures never surface as errors;
// only cache storage failures do.
func (s *CacheService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	hashes := make([]string, len(texts))

	// texts still needing a vector, keyed by hash; duplicates share one computation
	pending := make(map[string][]int)
	var missTexts []string
	var missHashes []string

	for i, text := range texts {
		h := HashText(text)
		hashes[i] = h

		vec, err := s.lookup(ctx, h)
		if err != nil {
			return nil, err
		}
		if vec != nil {
			vectors[i] = vec
			continue
		}

		if _, seen := pending[h]; !seen {
			missTexts = append(missTexts, text)
			missHashes = append(missHashes, h)
		}
		pending[h] = append(pending[h], i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	computed := s.compute(ctx, missTexts)
	for j, h := range missHashes {
		vec := computed[j]
		if err := s.repo.Put(ctx, h, vec); err != nil {
			return nil, fmt.Errorf("failed to store embedding: %w", err)
		}
		s.hot.Set(h, vec, gocache.DefaultExpiration)
		for _, i := range pending[h] {
			vectors[i] = vec
		}
	}

	s.logger.Debug("Embedded texts",
		"total", len(texts),
		"computed", len(missTexts),
		"provider", s.provider != nil,
	)

	return vectors, nil
}

// lookup returns a cached vector of the configured size, or nil.
// Entries of another size were written under a previous model and count as misses.
func (s *CacheService) lookup(ctx context.Context, hash string) ([]float32, error) {
	if v, ok := s.hot.Get(hash); ok {
		if vec := v.([]float32); len(vec) == s.dims {
			return vec, nil
		}
		s.hot.Delete(hash)
	}

	vec, err := s.repo.Get(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}
	if vec == nil || len(vec) != s.dims {
		return nil, nil
	}

	s.hot.Set(hash, vec, gocache.DefaultExpiration)
	return vec, nil
}

// compute embeds texts in provider batches of at most MaxProviderBatch.
// A failed batch falls back on its own; the other batches keep provider vectors.
func (s *CacheService) compute(ctx context.Context, texts []string) [][]float32 {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxProviderBatch {
		end := min(start+MaxProviderBatch, len(texts))
		vectors = append(vectors, s.computeBatch(ctx, texts[start:end])...)
	}
	return vectors
}

func (s *CacheService) computeBatch(ctx context.Context, texts []string) [][]float32 {
	if s.provider != nil {
		vectors, err := s.provider.Embed(ctx, texts)
		if err == nil && len(vectors) != len(texts) {
			err = fmt.Errorf("provider returned %d vectors for %d inputs", len(vectors), len(texts))
		}
		if err == nil {
			err = s.checkDims(vectors)
		}
		if err == nil {
			return vectors
		}
		s.logger.Error("Embedding provider failed, using deterministic fallback",
			"texts", len(texts),
			"error", err,
		)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = DeterministicVector(text, s.dims)
	}
	return vectors
}

func (s *CacheService) checkDims(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != s.dims {
			return fmt.Errorf("provider returned %d dimensions for input %d, configured %d", len(v), i, s.dims)
		}
	}
	return nil
}
