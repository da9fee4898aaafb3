// ABOUTME: HTTP fetcher for marketplace feeds and results pages with browser-like request headers
// ABOUTME: Applies a per-attempt timeout, SSRF protection and a response size limit

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// Request headers sent on every fetch.
const (
	DefaultUserAgent = "storefeed/1.0 (+https://github.com/harper/storefeed)"
	AcceptHeader     = "application/rss+xml, application/atom+xml, application/xml, text/xml;q=0.9, text/html;q=0.8, */*;q=0.7"
	AcceptLanguage   = "en-US,en;q=0.9"
	DefaultReferer   = "https://www.ebay.com/"
	DefaultTimeout   = 8 * time.Second
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrTooLarge         = errors.New("response too large")
	ErrPrivateAddress   = errors.New("access to private IP ranges is not allowed")
)

// Result contains the response from an HTTP fetch operation.
type Result struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Text returns the body as a string.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	UserAgent string
	Referer   string
	Timeout   time.Duration
	// HTTPClient overrides the underlying client (tests, custom transports).
	HTTPClient *http.Client
}

// Client fetches documents over HTTP. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	userAgent  string
	referer    string
	timeout    time.Duration
}

// New creates a Client from opts.
func New(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		userAgent:  opts.UserAgent,
		referer:    opts.Referer,
		timeout:    opts.Timeout,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.referer == "" {
		c.referer = DefaultReferer
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// isPrivateIP checks if an IP address is in a private range (excluding loopback for tests).
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// Fetch retrieves urlStr with the marketplace request headers.
// The whole attempt, body included, is bounded by the client timeout.
// Returns an error wrapping ErrUnexpectedStatus for non-2xx responses.
func (c *Client) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL: unsupported scheme %q", parsedURL.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if addrs, err := net.DefaultResolver.LookupIPAddr(ctx, parsedURL.Hostname()); err == nil {
		for _, addr := range addrs {
			if isPrivateIP(addr.IP) {
				return nil, ErrPrivateAddress
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("Accept-Language", AcceptLanguage)
	req.Header.Set("Referer", c.referer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w (exceeds %d bytes)", ErrTooLarge, MaxResponseSize)
	}

	return &Result{
		URL:         urlStr,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
