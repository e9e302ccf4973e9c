package interfaces

import (
	"github.com/tourassist/backend/internal/interfaces/http"
	"github.com/tourassist/backend/internal/interfaces/mcp"
)

// HTTPServer HTTP server type alias
type HTTPServer = http.HTTPServer

// MCPServer MCP server type alias
type MCPServer = mcp.MCPServer
