//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/application"
	"github.com/tourassist/backend/internal/infrastructure"
	"github.com/tourassist/backend/internal/interfaces"
)

// InitializeApp wires the HTTP + MCP server process
func InitializeApp() (*App, func(), error) {
	wire.Build(
		infrastructure.ProviderSet,
		application.ProviderSet,
		interfaces.ProviderSet,
		NewApp,
	)
	return nil, nil, nil
}

// InitializeEval wires the eval CLI
func InitializeEval() (*EvalApp, func(), error) {
	wire.Build(
		infrastructure.ProviderSet,
		application.ProviderSet,
		NewEvalApp,
	)
	return nil, nil, nil
}
