// ABOUTME: Source resolver that walks candidate sources in priority order until one yields items
// ABOUTME: Swallows per-attempt failures, bounds each attempt with a timeout and supports a diagnostic mode

package source

import (
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/harper/storefeed/internal/fetch"
	"github.com/harper/storefeed/internal/models"
	"github.com/harper/storefeed/internal/parse"
)

// DefaultSampleSize bounds the raw document prefix kept per diagnostic attempt.
const DefaultSampleSize = 600

// Fetcher retrieves the document at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (*fetch.Result, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	return f(ctx, url)
}

// Options configures a Resolver.
type Options struct {
	Seller         string
	ProxyPrefix    string
	Strategies     []Strategy    // defaults to Strategies(DefaultOrder, true)
	AttemptTimeout time.Duration // defaults to fetch.DefaultTimeout
	SampleSize     int           // defaults to DefaultSampleSize
	Logger         *log.Logger
}

// Resolver turns a seller name into a list of items.
type Resolver struct {
	fetcher        Fetcher
	seller         string
	proxyPrefix    string
	strategies     []Strategy
	attemptTimeout time.Duration
	sampleSize     int
	logger         *log.Logger
}

// NewResolver creates a Resolver that fetches through f.
func NewResolver(f Fetcher, opts Options) *Resolver {
	r := &Resolver{
		fetcher:        f,
		seller:         opts.Seller,
		proxyPrefix:    opts.ProxyPrefix,
		strategies:     opts.Strategies,
		attemptTimeout: opts.AttemptTimeout,
		sampleSize:     opts.SampleSize,
		logger:         opts.Logger,
	}
	if r.strategies == nil {
		r.strategies = Strategies(DefaultOrder, true)
	}
	if r.attemptTimeout <= 0 {
		r.attemptTimeout = fetch.DefaultTimeout
	}
	if r.sampleSize <= 0 {
		r.sampleSize = DefaultSampleSize
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Seller returns the seller this resolver looks up.
func (r *Resolver) Seller() string {
	return r.seller
}

// WithSeller returns a copy of r that looks up seller instead.
func (r *Resolver) WithSeller(seller string) *Resolver {
	cp := *r
	cp.seller = seller
	return &cp
}

// Attempt records the outcome of one strategy in diagnostic mode.
type Attempt struct {
	Strategy   string `json:"strategy"`
	URL        string `json:"url"`
	FoundItems int    `json:"foundItems"`
	Format     string `json:"format,omitempty"`
	Error      string `json:"error,omitempty"`
	Sample     string `json:"sample"`
}

// Report is the result of running every strategy.
type Report struct {
	Tried []Attempt     `json:"tried"`
	// Items holds the result of the first strategy that found anything,
	// i.e. what Resolve would have returned.
	Items []models.Item `json:"items"`
}

// Resolve tries each strategy in order and returns the items of the first
// one that finds at least one. Failures are logged and skipped. Returns an
// empty list when every strategy comes up empty or ctx is done.
func (r *Resolver) Resolve(ctx context.Context) []models.Item {
	for i, s := range r.strategies {
		if ctx.Err() != nil {
			r.logger.Warn("resolve abandoned", "seller", r.seller, "remaining", len(r.strategies)-i, "err", ctx.Err())
			break
		}
		items, _, err := r.attempt(ctx, s)
		if err != nil {
			continue
		}
		if len(items) > 0 {
			r.logger.Info("resolved", "seller", r.seller, "strategy", s.Name(), "items", len(items))
			return items
		}
	}
	r.logger.Warn("no source returned items", "seller", r.seller, "strategies", len(r.strategies))
	return []models.Item{}
}

// Diagnose runs every strategy without short-circuiting and reports what
// each one returned.
func (r *Resolver) Diagnose(ctx context.Context) Report {
	report := Report{
		Tried: make([]Attempt, 0, len(r.strategies)),
		Items: []models.Item{},
	}
	for _, s := range r.strategies {
		a := Attempt{Strategy: s.Name(), URL: s.URL(r.seller, r.proxyPrefix)}
		items, body, err := r.attempt(ctx, s)
		if err != nil {
			a.Error = err.Error()
		}
		a.FoundItems = len(items)
		a.Sample = truncate(body, r.sampleSize)
		if body != "" {
			a.Format = parse.Sniff(body)
		}
		if len(report.Items) == 0 && len(items) > 0 {
			report.Items = items
		}
		report.Tried = append(report.Tried, a)
	}
	return report
}

// attempt fetches and parses one strategy. Panics from the fetcher are
// converted into errors.
func (r *Resolver) attempt(ctx context.Context, s Strategy) (items []models.Item, body string, err error) {
	target := s.URL(r.seller, r.proxyPrefix)
	logger := r.logger.With("strategy", s.Name(), "url", target)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("attempt panicked: %v", rec)
			items = nil
			logger.Error("attempt failed", "err", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	start := time.Now()
	res, err := r.fetcher.Fetch(ctx, target)
	if err != nil {
		logger.Warn("fetch failed", "err", err, "elapsed", time.Since(start))
		return nil, "", err
	}
	body = res.Text()
	items = parse.Parse(s.Format(), body)
	logger.Debug("attempt finished", "items", len(items), "bytes", len(body), "elapsed", time.Since(start))
	return items, body, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
