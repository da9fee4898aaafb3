// ABOUTME: MCP server implementation for storefeed
// ABOUTME: Exposes seller listing lookups as tools for AI agents over stdio

package mcp

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/harper/storefeed/internal/config"
	"github.com/harper/storefeed/internal/source"
)

// Server wraps the MCP server with the listing resolver
type Server struct {
	mcpServer      *server.MCPServer
	resolver       *source.Resolver
	resolveTimeout time.Duration
	logger         *log.Logger
}

// NewServer creates a new MCP server instance. resolveTimeout bounds each
// tool call across all source attempts; zero means the default.
func NewServer(resolver *source.Resolver, version string, resolveTimeout time.Duration, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if resolveTimeout <= 0 {
		resolveTimeout = config.DefaultResolveTimeout
	}
	s := &Server{
		resolver:       resolver,
		resolveTimeout: resolveTimeout,
		logger:         logger,
	}

	s.mcpServer = server.NewMCPServer(
		"storefeed",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server on stdio
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
