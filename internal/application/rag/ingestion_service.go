package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"github.com/tourassist/backend/internal/infrastructure/embedding"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

var (
	vectorIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tourassist:vector-record"))
	chunkIDSpace  = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tourassist:chunk"))
)

// VectorIndex is the part of the vector index manager the RAG services use
type VectorIndex interface {
	Upsert(ctx context.Context, records []domainRAG.VectorRecord) error
	Query(ctx context.Context, vector []float32, tenantID string, topK int) ([]domainRAG.ScoredChunk, error)
}

// IngestResult is the outcome of one upload
type IngestResult struct {
	DocumentID    string `json:"document_id"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Status        string `json:"status"`
}

// IngestionService turns uploaded files into chunks and vector records
type IngestionService struct {
	documents domainRAG.DocumentRepository
	chunks    domainRAG.ChunkRepository
	embedder  embedding.Embedder
	index     VectorIndex
	maxChars  int
	uploads   keyedMutex
	logger    *slog.Logger
}

// NewIngestionService creates the ingestion service
func NewIngestionService(
	documents domainRAG.DocumentRepository,
	chunks domainRAG.ChunkRepository,
	embedder embedding.Embedder,
	index VectorIndex,
	cfg *config.RAGConfig,
) *IngestionService {
	return &IngestionService{
		documents: documents,
		chunks:    chunks,
		embedder:  embedder,
		index:     index,
		maxChars:  cfg.MaxChunkChars,
		logger:    log.NewModuleLogger("rag", "ingestion"),
	}
}

// Ingest stores raw as a document of tenantID. Content already ingested for
// the tenant returns the existing document with ChunksIndexed 0; a document
// left in processing by an earlier failure is indexed again. Uploads of the
// same content for the same tenant run one at a time.
func (s *IngestionService) Ingest(ctx context.Context, tenantID, filename string, raw []byte) (*IngestResult, error) {
	logger := log.FromContext(ctx, s.logger)
	contentHash := HashContent(raw)

	unlock := s.uploads.lock(tenantID + "\x00" + contentHash)
	defer unlock()

	existing, err := s.documents.FindByHash(ctx, tenantID, contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}
	if existing != nil {
		if existing.IsReady() {
			logger.Info("Duplicate upload skipped",
				"tenant_id", tenantID,
				"document_id", existing.ID,
			)
			return &IngestResult{DocumentID: existing.ID, ChunksIndexed: 0, Status: existing.Status}, nil
		}
		logger.Info("Resuming interrupted ingestion",
			"tenant_id", tenantID,
			"document_id", existing.ID,
		)
		return s.indexDocument(ctx, existing, raw)
	}

	doc := &domainRAG.Document{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Filename:    filename,
		ContentHash: contentHash,
		Status:      domainRAG.DocumentStatusProcessing,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		if !errors.Is(err, domainRAG.ErrDuplicateDocument) {
			return nil, fmt.Errorf("failed to create document: %w", err)
		}
		// lost an insert race on (tenant_id, content_hash)
		winner, ferr := s.documents.FindByHash(ctx, tenantID, contentHash)
		if ferr != nil || winner == nil {
			return nil, fmt.Errorf("failed to load concurrently created document: %w", errors.Join(err, ferr))
		}
		return &IngestResult{DocumentID: winner.ID, ChunksIndexed: 0, Status: winner.Status}, nil
	}

	return s.indexDocument(ctx, doc, raw)
}

// indexDocument runs extraction through to the ready status; on failure the document
// stays in processing
func (s *IngestionService) indexDocument(ctx context.Context, doc *domainRAG.Document, raw []byte) (*IngestResult, error) {
	logger := log.FromContext(ctx, s.logger)

	text, err := ExtractText(doc.Filename, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", doc.Filename, err)
	}
	texts := ChunkText(text, s.maxChars)

	chunks := make([]*domainRAG.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = &domainRAG.Chunk{
			ID:             derivedID(chunkIDSpace, doc.ID, i),
			TenantID:       doc.TenantID,
			DocumentID:     doc.ID,
			ChunkIndex:     i,
			Text:           t,
			VectorRecordID: derivedID(vectorIDSpace, doc.ID, i),
		}
	}

	if len(chunks) > 0 {
		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks: %w", err)
		}
		records := make([]domainRAG.VectorRecord, len(chunks))
		for i, c := range chunks {
			records[i] = domainRAG.NewVectorRecord(&domainRAG.SourcedChunk{Chunk: *c, Source: doc.Filename}, vectors[i])
		}
		if err := s.index.Upsert(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to index chunks: %w", err)
		}
	}

	if err := s.chunks.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return nil, fmt.Errorf("failed to save chunks: %w", err)
	}
	if err := s.documents.UpdateStatus(ctx, doc.ID, domainRAG.DocumentStatusReady); err != nil {
		return nil, fmt.Errorf("failed to mark document ready: %w", err)
	}

	logger.Info("Ingest complete",
		"tenant_id", doc.TenantID,
		"document_id", doc.ID,
		"filename", doc.Filename,
		"chunks", len(chunks),
	)
	return &IngestResult{DocumentID: doc.ID, ChunksIndexed: len(chunks), Status: domainRAG.DocumentStatusReady}, nil
}

// keyedMutex holds one mutex per key while any caller uses it
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sync.Mutex
	refs int
}

// lock blocks until key is free and returns its unlock func
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// HashContent is the sha256 hex digest used for document dedup
func HashContent(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// derivedID is stable per (document, chunk index) so re-indexing overwrites
func derivedID(space uuid.UUID, documentID string, index int) string {
	return uuid.NewSHA1(space, []byte(documentID+":"+strconv.Itoa(index))).String()
}
