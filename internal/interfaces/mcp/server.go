package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	appChat "github.com/tourassist/backend/internal/application/chat"
	appRAG "github.com/tourassist/backend/internal/application/rag"
	appTenant "github.com/tourassist/backend/internal/application/tenant"
	"github.com/tourassist/backend/internal/infrastructure/log"
	"github.com/tourassist/backend/internal/infrastructure/vector"
)

// ServerVersion is reported to MCP clients
const ServerVersion = "0.1.0"

// MCPServer MCP server exposing retrieval and chat to agents
type MCPServer struct {
	server       *mcp.Server
	handler      http.Handler
	tenants      *appTenant.Service
	retrieval    *appRAG.RetrievalService
	orchestrator *appChat.Orchestrator
	index        *vector.IndexManager
	logger       *slog.Logger
}

// NewServer creates the MCP server
func NewServer(
	tenants *appTenant.Service,
	retrieval *appRAG.RetrievalService,
	orchestrator *appChat.Orchestrator,
	index *vector.IndexManager,
) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "tourassist",
			Version: ServerVersion,
		},
		nil,
	)

	mcpServer := &MCPServer{
		server:       server,
		tenants:      tenants,
		retrieval:    retrieval,
		orchestrator: orchestrator,
		index:        index,
		logger:       log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name: "retrieve_context",
		Description: `Search a tenant's uploaded travel documents for passages relevant to a query.

Parameters:
- tenant_id (string, required): Tenant ID
- api_key (string, required): Tenant API key
- query (string, required): Natural language query

Returns: The most similar passages with their source filename, document ID and similarity score.`,
	}, mcpServer.retrieveContextTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "ask",
		Description: `Ask the tourist assistant a question answered from the tenant's documents.
Opening hours questions about known venues are answered directly.

Parameters:
- tenant_id (string, required): Tenant ID
- api_key (string, required): Tenant API key
- session_id (string, optional): Conversation ID for follow-up questions, defaults to "mcp"
- question (string, required): The question

Returns: The answer, token usage, estimated cost and the IDs of the documents used.`,
	}, mcpServer.askTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the status of the document vector index: collection name, vector size and number of indexed chunks. Requires tenant_id and api_key.",
	}, mcpServer.indexStatusTool)

	mcpServer.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return mcpServer
}

// GetHandler returns the SSE handler mounted at /mcp/sse
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Stop is a no-op; SSE sessions close with the HTTP server
func (s *MCPServer) Stop() error {
	return nil
}
