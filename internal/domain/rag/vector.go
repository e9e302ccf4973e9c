package rag

// Payload field names stored on every vector record
const (
	PayloadTenantID   = "tenant_id"
	PayloadDocumentID = "document_id"
	PayloadChunkIndex = "chunk_index"
	PayloadText       = "text"
	PayloadSource     = "source"
)

// VectorRecord is one point in the vector index
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload VectorPayload
}

// VectorPayload is the metadata attached to a vector record
type VectorPayload struct {
	TenantID   string
	DocumentID string
	ChunkIndex int
	Text       string
	Source     string
}

// ScoredChunk is a retrieval hit, ordered by descending Score
type ScoredChunk struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Score      float32 `json:"score"`
}

// NewVectorRecord builds the record for a persisted chunk
func NewVectorRecord(c *SourcedChunk, vector []float32) VectorRecord {
	return VectorRecord{
		ID:     c.VectorRecordID,
		Vector: vector,
		Payload: VectorPayload{
			TenantID:   c.TenantID,
			DocumentID: c.DocumentID,
			ChunkIndex: c.ChunkIndex,
			Text:       c.Text,
			Source:     c.Source,
		},
	}
}
