package log

import "github.com/google/wire"

// ProviderSet logging providers
var ProviderSet = wire.NewSet(
	NewConfigFromEnv,
)
