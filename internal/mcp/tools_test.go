// ABOUTME: Tests for MCP listing tool handlers
// ABOUTME: Uses a resolver backed by an in-memory fetcher

package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/storefeed/internal/config"
	"github.com/harper/storefeed/internal/fetch"
	"github.com/harper/storefeed/internal/source"
)

const testFeed = `<rss><channel>
<item><title>Lamp</title><link>https://www.ebay.com/itm/1</link></item>
<item><title>Chair</title><link>https://www.ebay.com/itm/2</link></item>
<item><title>Desk</title><link>https://www.ebay.com/itm/3</link></item>
</channel></rss>`

// setupTestServer returns a server whose fetcher only answers for the seller "known".
func setupTestServer(t *testing.T) (*Server, *[]string) {
	t.Helper()
	var fetched []string
	fetcher := source.FetcherFunc(func(_ context.Context, url string) (*fetch.Result, error) {
		fetched = append(fetched, url)
		if strings.Contains(url, "known") {
			return &fetch.Result{Body: []byte(testFeed)}, nil
		}
		return &fetch.Result{Body: []byte("<html></html>")}, nil
	})
	strategies := []source.Strategy{
		{Transport: source.Direct, Shape: source.SellerFeed},
		{Transport: source.Direct, Shape: source.StoreFeed},
	}
	resolver := source.NewResolver(fetcher, source.Options{Seller: "known", Strategies: strategies})
	return NewServer(resolver, "test", 0, nil), &fetched
}

func callListListings(t *testing.T, s *Server, input ListListingsInput) (ListListingsOutput, error) {
	t.Helper()
	data, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("failed to marshal input: %v", err)
	}
	var args map[string]interface{}
	if err := json.Unmarshal(data, &args); err != nil {
		t.Fatalf("failed to unmarshal input: %v", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := s.handleListListings(context.Background(), req)
	if err != nil {
		return ListListingsOutput{}, err
	}

	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	var output ListListingsOutput
	if err := json.Unmarshal([]byte(textContent.Text), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	return output, nil
}

func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestHandleListListings_Default(t *testing.T) {
	s, fetched := setupTestServer(t)

	output, err := callListListings(t, s, ListListingsInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Seller != "known" {
		t.Errorf("Seller = %q", output.Seller)
	}
	if output.Count != 3 || len(output.Items) != 3 {
		t.Errorf("expected 3 items, got count=%d len=%d", output.Count, len(output.Items))
	}
	if len(*fetched) != 1 {
		t.Errorf("expected a single fetch, got %d", len(*fetched))
	}
	if output.Tried != nil {
		t.Error("expected no diagnostics without debug")
	}
}

func TestHandleListListings_SellerOverride(t *testing.T) {
	s, _ := setupTestServer(t)

	output, err := callListListings(t, s, ListListingsInput{Seller: strPtr("someoneelse")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Seller != "someoneelse" {
		t.Errorf("Seller = %q", output.Seller)
	}
	if output.Count != 0 {
		t.Errorf("expected no items for another seller, got %d", output.Count)
	}
	if s.resolver.Seller() != "known" {
		t.Error("seller override leaked into the shared resolver")
	}
}

func TestHandleListListings_Debug(t *testing.T) {
	s, fetched := setupTestServer(t)

	output, err := callListListings(t, s, ListListingsInput{Debug: boolPtr(true)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Tried) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(output.Tried))
	}
	if len(*fetched) != 2 {
		t.Errorf("expected every source fetched in debug mode, got %d", len(*fetched))
	}
}

func TestHandleListListings_Limit(t *testing.T) {
	s, _ := setupTestServer(t)

	output, err := callListListings(t, s, ListListingsInput{Limit: intPtr(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(output.Items))
	}
	if output.Count != 3 {
		t.Errorf("expected count to report all 3 items, got %d", output.Count)
	}
}

func TestHandleListListings_NegativeLimit(t *testing.T) {
	s, _ := setupTestServer(t)

	_, err := callListListings(t, s, ListListingsInput{Limit: intPtr(-1)})
	if err == nil {
		t.Fatal("expected error for negative limit")
	}
	if err.Error() != "limit must be non-negative, got -1" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListListings_BoundedByResolveTimeout(t *testing.T) {
	var deadlines []time.Duration
	fetcher := source.FetcherFunc(func(ctx context.Context, url string) (*fetch.Result, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Errorf("fetch of %s ran without a deadline", url)
			return &fetch.Result{}, nil
		}
		deadlines = append(deadlines, time.Until(deadline))
		return &fetch.Result{Body: []byte("<html></html>")}, nil
	})
	strategies := []source.Strategy{{Transport: source.Direct, Shape: source.SellerFeed}}
	resolver := source.NewResolver(fetcher, source.Options{
		Seller:         "known",
		Strategies:     strategies,
		AttemptTimeout: time.Hour,
	})
	s := NewServer(resolver, "test", 2*time.Second, nil)

	for _, debug := range []bool{false, true} {
		if _, err := callListListings(t, s, ListListingsInput{Debug: boolPtr(debug)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(deadlines) != 2 {
		t.Fatalf("expected 2 fetches, got %d", len(deadlines))
	}
	for _, d := range deadlines {
		if d > 2*time.Second {
			t.Errorf("fetch deadline %v exceeds the resolve timeout", d)
		}
	}
}

func TestNewServer_DefaultResolveTimeout(t *testing.T) {
	s, _ := setupTestServer(t)
	if s.resolveTimeout != config.DefaultResolveTimeout {
		t.Errorf("resolveTimeout = %v, want %v", s.resolveTimeout, config.DefaultResolveTimeout)
	}
}
