package chat

import (
	"github.com/google/wire"
	appRAG "github.com/tourassist/backend/internal/application/rag"
	domainChat "github.com/tourassist/backend/internal/domain/chat"
	"github.com/tourassist/backend/internal/infrastructure/llm"
	"github.com/tourassist/backend/internal/infrastructure/metrics"
)

// ProvideToolRouter provides the default tool router
func ProvideToolRouter() domainChat.ToolRouter {
	return NewOpeningHoursRouter()
}

// ProviderSet chat application providers
var ProviderSet = wire.NewSet(
	ProvideSessionMemory,
	ProvideToolRouter,
	NewOrchestrator,
	wire.Bind(new(Retriever), new(*appRAG.RetrievalService)),
	wire.Bind(new(LLM), new(*llm.Client)),
	wire.Bind(new(MetricsRecorder), new(*metrics.Store)),
)
