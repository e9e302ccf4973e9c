package rag

import "errors"

var (
	// ErrIndexUnavailable is returned when the vector index backend cannot be reached
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrReindexConflict is returned when a dimension mismatch is seen while a
	// reindex is already running. It is a configuration error and is never retried.
	ErrReindexConflict = errors.New("vector size mismatch during reindex")

	// ErrDuplicateDocument is returned by DocumentRepository.Create when the
	// (tenant_id, content_hash) pair already exists
	ErrDuplicateDocument = errors.New("document already exists")
)
