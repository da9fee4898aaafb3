// ABOUTME: HTTP interface serving a seller's listings as JSON through gin
// ABOUTME: Always answers 200 with an item list, with an optional diagnostic mode and cache directives

package server

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harper/storefeed/internal/models"
	"github.com/harper/storefeed/internal/source"
)

// ListingsPath is the route serving listings. LegacyPath is kept for
// deployments that still call the older endpoint.
const (
	ListingsPath = "/api/listings"
	LegacyPath   = "/api/ebay"
	HealthPath   = "/healthz"
)

const debugItemLimit = 3

// Resolver produces the listings for the configured seller.
type Resolver interface {
	Resolve(ctx context.Context) []models.Item
	Diagnose(ctx context.Context) source.Report
}

// ListingsResponse is the normal response body.
type ListingsResponse struct {
	Items []models.Item `json:"items"`
}

// DebugResponse is returned when the debug query parameter is set.
type DebugResponse struct {
	Tried      []source.Attempt `json:"tried"`
	ItemsCount int              `json:"itemsCount"`
	Items      []models.Item    `json:"items"`
}

// Options configures a Server.
type Options struct {
	// CacheControl is sent with normal responses. Defaults to "no-store".
	CacheControl string
	// ResolveTimeout bounds one request across all source attempts.
	ResolveTimeout time.Duration
	Logger         *log.Logger
}

// Server wires the resolver to HTTP routes.
type Server struct {
	resolver       Resolver
	cacheControl   string
	resolveTimeout time.Duration
	logger         *log.Logger
}

// New creates a Server.
func New(resolver Resolver, opts Options) *Server {
	s := &Server{
		resolver:       resolver,
		cacheControl:   opts.CacheControl,
		resolveTimeout: opts.ResolveTimeout,
		logger:         opts.Logger,
	}
	if s.cacheControl == "" {
		s.cacheControl = "no-store"
	}
	if s.resolveTimeout <= 0 {
		s.resolveTimeout = 45 * time.Second
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(s.requestID(), s.accessLog(), gin.CustomRecovery(s.recoverEmpty))

	r.GET(ListingsPath, s.handleListings)
	r.GET(LegacyPath, s.handleListings)
	r.GET(HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func (s *Server) handleListings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.resolveTimeout)
	defer cancel()

	if isTruthy(c.Query("debug")) {
		report := s.resolver.Diagnose(ctx)
		items := report.Items
		if len(items) > debugItemLimit {
			items = items[:debugItemLimit]
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, DebugResponse{
			Tried:      report.Tried,
			ItemsCount: len(report.Items),
			Items:      items,
		})
		return
	}

	items := s.resolver.Resolve(ctx)
	if items == nil {
		items = []models.Item{}
	}
	cacheControl := s.cacheControl
	if len(items) == 0 {
		// empty results are never cacheable
		cacheControl = "no-store"
	}
	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, ListingsResponse{Items: items})
}

// recoverEmpty turns a panic into the same empty response total failure produces.
func (s *Server) recoverEmpty(c *gin.Context, err any) {
	s.logger.Error("handler panicked", "err", err, "path", c.Request.URL.Path, "request_id", c.GetString("request_id"))
	c.Header("Cache-Control", "no-store")
	c.AbortWithStatusJSON(http.StatusOK, ListingsResponse{Items: []models.Item{}})
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"request_id", c.GetString("request_id"),
		)
	}
}

// isTruthy accepts any non-empty value except the usual spellings of false.
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
