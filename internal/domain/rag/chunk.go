package rag

// Chunk is a contiguous slice of a document's extracted text.
// ChunkIndex defines reading order within the document.
type Chunk struct {
	ID             string
	TenantID       string
	DocumentID     string
	ChunkIndex     int
	Text           string
	VectorRecordID string // point id in the vector index
}

// SourcedChunk is a persisted chunk joined with the filename of its document.
// The reindex stream yields these so payloads can be rebuilt from durable storage.
type SourcedChunk struct {
	Chunk
	Source string
}
