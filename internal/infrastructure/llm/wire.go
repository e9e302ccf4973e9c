package llm

import "github.com/google/wire"

// ProviderSet LLM providers
var ProviderSet = wire.NewSet(NewClient)
