package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	domainRAG "github.com/tourassist/backend/internal/domain/rag"
	domainTenant "github.com/tourassist/backend/internal/domain/tenant"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/vector"
)

// defaultSessionID is used when ask omits session_id; history is still kept per tenant
const defaultSessionID = "mcp"

// RetrieveContextInput retrieve_context input
type RetrieveContextInput struct {
	TenantID string `json:"tenant_id" jsonschema:"Tenant ID (required)"`
	APIKey   string `json:"api_key" jsonschema:"Tenant API key (required)"`
	Query    string `json:"query" jsonschema:"Natural language query (required)"`
}

// RetrieveContextOutput retrieve_context output
type RetrieveContextOutput struct {
	Results []domainRAG.ScoredChunk `json:"results" jsonschema:"Passages ordered by descending similarity"`
	Count   int                     `json:"count" jsonschema:"Number of passages"`
}

// AskInput ask input
type AskInput struct {
	TenantID  string `json:"tenant_id" jsonschema:"Tenant ID (required)"`
	APIKey    string `json:"api_key" jsonschema:"Tenant API key (required)"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation ID, defaults to mcp"`
	Question  string `json:"question" jsonschema:"The question (required)"`
}

// AskOutput ask output
type AskOutput struct {
	Response        string   `json:"response" jsonschema:"The answer"`
	TokensUsed      int      `json:"tokens_used" jsonschema:"LLM tokens used, 0 for tool and fallback answers"`
	EstimatedCost   float64  `json:"estimated_cost" jsonschema:"Estimated cost in USD"`
	RetrievedDocIDs []string `json:"retrieved_doc_ids" jsonschema:"IDs of the documents retrieved for the question"`
}

// IndexStatusInput get_index_status input
type IndexStatusInput struct {
	TenantID string `json:"tenant_id" jsonschema:"Tenant ID (required)"`
	APIKey   string `json:"api_key" jsonschema:"Tenant API key (required)"`
}

// IndexStatusOutput get_index_status output
type IndexStatusOutput = vector.IndexStats

func (s *MCPServer) retrieveContextTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RetrieveContextInput,
) (*mcp.CallToolResult, RetrieveContextOutput, error) {
	output := RetrieveContextOutput{Results: []domainRAG.ScoredChunk{}}

	if input.Query == "" {
		return nil, output, fmt.Errorf("query is required")
	}
	if err := s.authorize(ctx, input.TenantID, input.APIKey); err != nil {
		return nil, output, err
	}

	results, err := s.retrieval.Retrieve(log.WithTenantID(ctx, input.TenantID), input.TenantID, input.Query)
	if err != nil {
		return nil, output, fmt.Errorf("retrieval failed: %w", err)
	}

	output.Results = results
	output.Count = len(results)
	return nil, output, nil
}

func (s *MCPServer) askTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	var output AskOutput

	if input.Question == "" {
		return nil, output, fmt.Errorf("question is required")
	}
	if err := s.authorize(ctx, input.TenantID, input.APIKey); err != nil {
		return nil, output, err
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	ctx = log.WithSessionID(log.WithTenantID(ctx, input.TenantID), sessionID)
	reply, err := s.orchestrator.Chat(ctx, input.TenantID, sessionID, input.Question)
	if err != nil {
		return nil, output, fmt.Errorf("chat failed: %w", err)
	}

	output = AskOutput{
		Response:        reply.Response,
		TokensUsed:      reply.TokensUsed,
		EstimatedCost:   reply.EstimatedCost,
		RetrievedDocIDs: reply.RetrievedDocIDs,
	}
	return nil, output, nil
}

func (s *MCPServer) indexStatusTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	if err := s.authorize(ctx, input.TenantID, input.APIKey); err != nil {
		return nil, IndexStatusOutput{}, err
	}

	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, IndexStatusOutput{}, fmt.Errorf("failed to read index status: %w", err)
	}
	return nil, *stats, nil
}

// authorize verifies tenant credentials; the error text is shown to the agent
func (s *MCPServer) authorize(ctx context.Context, tenantID, apiKey string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant_id is required")
	}
	err := s.tenants.Verify(ctx, tenantID, apiKey)
	if err == nil {
		return nil
	}
	if errors.Is(err, domainTenant.ErrMissingCredentials) || errors.Is(err, domainTenant.ErrInvalidCredentials) {
		return err
	}
	s.logger.Error("Credential check failed", "tenant_id", tenantID, "error", err)
	return fmt.Errorf("credential check failed")
}
