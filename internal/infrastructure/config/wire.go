package config

import "github.com/google/wire"

// ProviderSet configuration providers
var ProviderSet = wire.NewSet(
	NewConfig,
	NewDatabaseConfig,
	NewServerConfig,
	NewVectorConfig,
	NewProviderConfig,
	NewRAGConfig,
	NewChatConfig,
	NewEvalConfig,
	NewInboxConfig,
	NewDiscoveryConfig,
)
