package chat

// ToolDecision is the outcome of a tool routing step
type ToolDecision struct {
	Handled  bool   // true when the tool answered and the LLM must be skipped
	Response string
	Tool     string
}

// ToolRouter decides whether a message is answered by a tool instead of the LLM.
// Implementations must be safe for concurrent use.
type ToolRouter interface {
	Route(message string) ToolDecision
}
