package application

import (
	"github.com/google/wire"
	"github.com/tourassist/backend/internal/application/chat"
	"github.com/tourassist/backend/internal/application/eval"
	"github.com/tourassist/backend/internal/application/rag"
	"github.com/tourassist/backend/internal/application/tenant"
)

// ProviderSet application layer providers
var ProviderSet = wire.NewSet(
	tenant.ProviderSet,
	rag.ProviderSet,
	chat.ProviderSet,
	eval.ProviderSet,
)
