package tenant

import "github.com/google/wire"

// ProviderSet tenant service providers
var ProviderSet = wire.NewSet(
	NewService,
)
