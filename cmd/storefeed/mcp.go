// ABOUTME: MCP server command for storefeed CLI
// ABOUTME: Starts stdio-based MCP server for AI agent integration

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/storefeed/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start the Model Context Protocol (MCP) server on stdio.

This lets AI agents look up a seller's current listings through the
list_listings tool, using the same source fallback chain as the HTTP endpoint.

The server communicates via JSON-RPC on stdin/stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := mcp.NewServer(resolver, Version, time.Duration(cfg.ResolveTimeout), logger)

		if err := server.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
