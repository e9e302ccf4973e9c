package discovery

import "github.com/google/wire"

// ProviderSet discovery providers
var ProviderSet = wire.NewSet(
	NewAdvertiser,
)
