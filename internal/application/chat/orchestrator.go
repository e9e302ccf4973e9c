package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainChat "github.com/tourassist/backend/internal/domain/chat"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/metrics"
)

// SystemPrompt opens every grounded conversation
const SystemPrompt = "You are TourAssist, a helpful tourist assistant. " +
	"Only answer using the provided context. " +
	"If the answer is not in the context, say you don't know and suggest next steps."

// LowConfidenceReply is returned when retrieval found nothing usable
const LowConfidenceReply = "I don't have enough information in the provided documents to answer that. " +
	"Please share more details or upload relevant materials."

// ConfidenceThreshold is the score at least one hit must reach
const ConfidenceThreshold = 0.2

// Retriever finds context for a question
type Retriever interface {
	Retrieve(ctx context.Context, tenantID, query string) ([]domainRAG.ScoredChunk, error)
}

// LLM completes a conversation; failures are absorbed into the completion
type LLM interface {
	Complete(ctx context.Context, turns []domainChat.Turn) domainChat.Completion
}

// MetricsRecorder receives one sample set per chat
type MetricsRecorder interface {
	RecordLatency(ms float64)
	RecordTokens(tokens int)
	RecordCost(cost float64)
	RecordPath(path string)
}

// Orchestrator answers a chat message: retrieve, route to a tool, gate on
// confidence, or ask the LLM with the retrieved context
type Orchestrator struct {
	retriever Retriever
	router    domainChat.ToolRouter
	memory    *SessionMemory
	llm       LLM
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewOrchestrator creates the chat orchestrator
func NewOrchestrator(retriever Retriever, router domainChat.ToolRouter, memory *SessionMemory, llm LLM, recorder MetricsRecorder) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		router:    router,
		memory:    memory,
		llm:       llm,
		metrics:   recorder,
		logger:    log.NewModuleLogger("chat", "orchestrator"),
	}
}

// Chat answers message for the tenant within the session
func (o *Orchestrator) Chat(ctx context.Context, tenantID, sessionID, message string) (*domainChat.Reply, error) {
	start := time.Now()
	logger := log.FromContext(ctx, o.logger)

	retrieved, err := o.retriever.Retrieve(ctx, tenantID, message)
	if err != nil {
		o.record(start, 0, 0, metrics.PathError)
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	docIDs := make([]string, 0, len(retrieved))
	texts := make([]string, 0, len(retrieved))
	for _, item := range retrieved {
		if item.DocumentID != "" {
			docIDs = append(docIDs, item.DocumentID)
		}
		if item.Text != "" {
			texts = append(texts, item.Text)
		}
	}

	var (
		response string
		tokens   int
		cost     float64
		path     string
	)
	switch decision := o.router.Route(message); {
	case decision.Handled:
		response, path = decision.Response, metrics.PathTool
	case lowConfidence(retrieved):
		response, path = LowConfidenceReply, metrics.PathLowConfidence
	default:
		turns := make([]domainChat.Turn, 0, DefaultMaxTurns+2)
		turns = append(turns, domainChat.Turn{Role: domainChat.RoleSystem, Content: SystemPrompt})
		turns = append(turns, o.memory.History(tenantID, sessionID)...)
		turns = append(turns, domainChat.Turn{
			Role:    domainChat.RoleUser,
			Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", strings.Join(texts, "\n"), message),
		})
		completion := o.llm.Complete(ctx, turns)
		response, tokens, cost, path = completion.Content, completion.TokensUsed, completion.EstimatedCost, metrics.PathGrounded
	}

	latencyMs := o.record(start, tokens, cost, path)

	o.memory.Append(tenantID, sessionID, domainChat.RoleUser, message)
	o.memory.Append(tenantID, sessionID, domainChat.RoleAssistant, response)

	logger.Debug("Chat answered",
		"tenant_id", tenantID,
		"session_id", sessionID,
		"path", path,
		"retrieved", len(retrieved),
		"latency_ms", latencyMs,
		"tokens", tokens,
	)

	return &domainChat.Reply{
		Response:        response,
		LatencyMs:       latencyMs,
		TokensUsed:      tokens,
		EstimatedCost:   cost,
		RetrievedDocIDs: docIDs,
	}, nil
}

// record emits one sample set and returns the latency in milliseconds
func (o *Orchestrator) record(start time.Time, tokens int, cost float64, path string) float64 {
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	o.metrics.RecordLatency(latencyMs)
	o.metrics.RecordTokens(tokens)
	o.metrics.RecordCost(cost)
	o.metrics.RecordPath(path)
	return latencyMs
}

// lowConfidence is true when nothing was retrieved or every score is below the threshold
func lowConfidence(retrieved []domainRAG.ScoredChunk) bool {
	for _, item := range retrieved {
		if item.Score >= ConfidenceThreshold {
			return false
		}
	}
	return true
}
