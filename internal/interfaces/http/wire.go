package http

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/interfaces/http/handler"
)

// ProviderSet HTTP interface providers
var ProviderSet = wire.NewSet(
	handler.ProviderSet,
	NewServer,
)
