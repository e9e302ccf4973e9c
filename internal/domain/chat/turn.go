// Package chat holds conversation types shared by the orchestrator, memory and LLM client
package chat

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the outcome of one chat request
type Reply struct {
	Response        string   `json:"response"`
	LatencyMs       float64  `json:"latency_ms"`
	TokensUsed      int      `json:"tokens_used"`
	EstimatedCost   float64  `json:"estimated_cost"`
	RetrievedDocIDs []string `json:"retrieved_doc_ids"`
}

// Completion is an LLM answer with its accounting
type Completion struct {
	Content       string
	TokensUsed    int
	EstimatedCost float64
}
