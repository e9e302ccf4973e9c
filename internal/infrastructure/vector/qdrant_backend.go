package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/config"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// QdrantBackend talks to Qdrant over gRPC
type QdrantBackend struct {
	client *qdrant.Client
}

var _ Backend = (*QdrantBackend)(nil)

// NewQdrantBackend connects to the configured Qdrant instance
func NewQdrantBackend(cfg *config.VectorConfig) (*QdrantBackend, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.GRPCPort,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &QdrantBackend{client: client}, nil
}

// CollectionSize reads the size of the collection's unnamed vector
func (b *QdrantBackend) CollectionSize(ctx context.Context, name string) (int, bool, error) {
	info, err := b.client.GetCollectionInfo(ctx, name)
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			return 0, false, nil
		}
		return 0, false, unavailable("get collection info", err)
	}

	vectors := info.GetConfig().GetParams().GetVectorsConfig()
	if params := vectors.GetParams(); params != nil {
		return int(params.GetSize()), true, nil
	}
	// named vectors: the collection is expected to carry a single one
	for _, params := range vectors.GetParamsMap().GetMap() {
		return int(params.GetSize()), true, nil
	}
	return 0, true, fmt.Errorf("collection %s has no vector params", name)
}

// CreateCollection creates a cosine collection with vectors of size
func (b *QdrantBackend) CreateCollection(ctx context.Context, name string, size int) error {
	err := b.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(size),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return unavailable("create collection", err)
	}

	// keyword index keeps tenant-filtered searches fast
	wait := true
	_, err = b.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: name,
		FieldName:      domainRAG.PayloadTenantID,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           &wait,
	})
	if err != nil {
		return unavailable("create tenant index", err)
	}
	return nil
}

// DeleteCollection drops the collection
func (b *QdrantBackend) DeleteCollection(ctx context.Context, name string) error {
	if err := b.client.DeleteCollection(ctx, name); err != nil {
		return unavailable("delete collection", err)
	}
	return nil
}

// Upsert writes records, waiting until they are searchable
func (b *QdrantBackend) Upsert(ctx context.Context, name string, records []domainRAG.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(r.ID),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				domainRAG.PayloadTenantID:   r.Payload.TenantID,
				domainRAG.PayloadDocumentID: r.Payload.DocumentID,
				domainRAG.PayloadChunkIndex: r.Payload.ChunkIndex,
				domainRAG.PayloadText:       r.Payload.Text,
				domainRAG.PayloadSource:     r.Payload.Source,
			}),
		})
	}

	wait := true
	_, err := b.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return unavailable("upsert points", err)
	}
	return nil
}

// Search runs a tenant-filtered nearest neighbour query
func (b *QdrantBackend) Search(ctx context.Context, name string, vector []float32, tenantID string, limit int) ([]domainRAG.ScoredChunk, error) {
	l := uint64(limit)
	hits, err := b.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &l,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(domainRAG.PayloadTenantID, tenantID),
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, unavailable("query points", err)
	}

	results := make([]domainRAG.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		results = append(results, domainRAG.ScoredChunk{
			DocumentID: stringValue(payload, domainRAG.PayloadDocumentID),
			Text:       stringValue(payload, domainRAG.PayloadText),
			Source:     stringValue(payload, domainRAG.PayloadSource),
			Score:      hit.GetScore(),
		})
	}
	return results, nil
}

// Count returns the exact number of points in the collection
func (b *QdrantBackend) Count(ctx context.Context, name string) (int, error) {
	exact := true
	n, err := b.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          &exact,
	})
	if err != nil {
		return 0, unavailable("count points", err)
	}
	return int(n), nil
}

// Close closes the gRPC connection
func (b *QdrantBackend) Close() error {
	return b.client.Close()
}

func stringValue(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainRAG.ErrIndexUnavailable, op, err)
}
