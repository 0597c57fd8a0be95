package mcp

import (
	"net/http"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// ServerName identifies this MCP server to clients.
const ServerName = "optimaxx-portal"

// NewServer creates an MCP server with every OptiMaxx tool registered.
// The same server backs the /mcp endpoint and the stdio transport.
func NewServer(service Service, logger *common.Logger) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(
		ServerName,
		config.Version().Version,
		mcpserver.WithToolCapabilities(true),
	)

	count := RegisterTools(mcpSrv, service, logger)

	logger.Debug().Int("tools", count).Msg("MCP tools registered")
	return mcpSrv
}

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable *mcpserver.StreamableHTTPServer
	server     *mcpserver.MCPServer
	logger     *common.Logger
}

// NewHandler creates a new MCP handler over the statistics service.
func NewHandler(service Service, logger *common.Logger) *Handler {
	mcpSrv := NewServer(service, logger)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)

	logger.Info().Msg("MCP handler initialized")

	return &Handler{
		streamable: streamable,
		server:     mcpSrv,
		logger:     logger,
	}
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
