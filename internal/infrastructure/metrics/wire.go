package metrics

import "github.com/google/wire"

// ProviderSet metrics providers
var ProviderSet = wire.NewSet(ProvideStore)
