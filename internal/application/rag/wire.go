package rag

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/infrastructure/vector"
)

// ProviderSet RAG application providers
var ProviderSet = wire.NewSet(
	NewIngestionService,
	NewRetrievalService,
	NewInboxIngestor,
	wire.Bind(new(VectorIndex), new(*vector.IndexManager)),
)
