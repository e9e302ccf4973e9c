package interfaces

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/interfaces/http"
	"github.com/tourassist/backend/internal/interfaces/mcp"
)

// ProviderSet interfaces layer providers
var ProviderSet = wire.NewSet(
	http.ProviderSet,
	mcp.ProviderSet,
)
