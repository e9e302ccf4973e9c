package mcp

import "github.com/google/wire"

// ProviderSet MCP providers
var ProviderSet = wire.NewSet(
	NewServer,
)
