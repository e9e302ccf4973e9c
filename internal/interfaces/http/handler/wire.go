package handler

import "github.com/google/wire"

// ProviderSet HTTP handler providers
var ProviderSet = wire.NewSet(
	NewTenantHandler,
	NewIngestHandler,
	NewChatHandler,
	NewMetricsHandler,
)
