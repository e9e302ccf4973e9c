package embedding

import "github.com/google/wire"

// ProviderSet embedding providers
var ProviderSet = wire.NewSet(
	ProvideProvider,
	ProvideCacheService,
	wire.Bind(new(Embedder), new(*CacheService)),
)
