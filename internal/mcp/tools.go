// ABOUTME: MCP tool definitions and handlers for listing lookups
// ABOUTME: Runs the same fallback chain as the HTTP endpoint, optionally in diagnostic mode

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/storefeed/internal/models"
	"github.com/harper/storefeed/internal/source"
)

type ListListingsInput struct {
	Seller *string `json:"seller,omitempty"`
	Debug  *bool   `json:"debug,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

type ListListingsOutput struct {
	Seller string           `json:"seller"`
	Count  int              `json:"count"`
	Items  []models.Item    `json:"items"`
	Tried  []source.Attempt `json:"tried,omitempty"`
}

func (s *Server) registerTools() {
	s.registerListListingsTool()
}

func (s *Server) registerListListingsTool() {
	tool := mcp.Tool{
		Name:        "list_listings",
		Description: "Fetch the current marketplace listings of a seller. Tries the seller's RSS/Atom feeds and search-results pages in priority order, directly and through a public proxy, and returns the first non-empty result as normalized items (id, title, price in USD, image, url). A price of 0 means the price could not be read. Set debug=true to see every source that was tried, how many items each produced and the start of each raw document.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"seller": map[string]interface{}{
					"type":        "string",
					"description": "Optional seller name. Defaults to the configured seller. Example: 'rickytradesllc'",
				},
				"debug": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, runs every source and reports what each returned. Default: false",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Optional maximum number of items to return. Default: all",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListListings)
}

func (s *Server) handleListListings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListListingsInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	resolver := s.resolver
	if input.Seller != nil && strings.TrimSpace(*input.Seller) != "" {
		resolver = resolver.WithSeller(strings.TrimSpace(*input.Seller))
	}

	if input.Limit != nil && *input.Limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative, got %d", *input.Limit)
	}

	ctx, cancel := context.WithTimeout(ctx, s.resolveTimeout)
	defer cancel()

	output := ListListingsOutput{Seller: resolver.Seller()}
	if input.Debug != nil && *input.Debug {
		report := resolver.Diagnose(ctx)
		output.Items = report.Items
		output.Tried = report.Tried
	} else {
		output.Items = resolver.Resolve(ctx)
	}

	output.Count = len(output.Items)
	if input.Limit != nil && *input.Limit > 0 && len(output.Items) > *input.Limit {
		output.Items = output.Items[:*input.Limit]
	}
	s.logger.Info("mcp list_listings", "seller", output.Seller, "items", output.Count)

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}
