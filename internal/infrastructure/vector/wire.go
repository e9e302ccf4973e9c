package vector

import "github.com/google/wire"

// ProviderSet vector index providers
var ProviderSet = wire.NewSet(
	ProvideBackend,
	ProvideIndexManager,
)
