package eval

import (
	"github.com/google/wire"
	appChat "github.com/tourassist/backend/internal/application/chat"
	appRAG "github.com/tourassist/backend/internal/application/rag"
)

// ProviderSet eval harness providers
var ProviderSet = wire.NewSet(
	NewHarness,
	wire.Bind(new(Chatter), new(*appChat.Orchestrator)),
	wire.Bind(new(Retriever), new(*appRAG.RetrievalService)),
)
