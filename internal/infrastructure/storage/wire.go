package storage

import "github.com/google/wire"

// ProviderSet storage providers
var ProviderSet = wire.NewSet(
	ProvideDB,
	NewTenantRepository,
	NewDocumentRepository,
	NewChunkRepository,
	NewEmbeddingCacheRepository,
)
