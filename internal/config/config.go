// ABOUTME: Configuration loading from an optional JSON file, a .env file and the environment
// ABOUTME: Also builds the source resolver and cache directives from the loaded settings

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harper/storefeed/internal/fetch"
	"github.com/harper/storefeed/internal/source"
)

var (
	ErrNoSeller         = errors.New("seller is required")
	ErrInvalidCacheMode = errors.New("invalid cache mode")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrNoSources        = errors.New("source order leaves no sources enabled")
)

// Duration is a time.Duration that reads and writes as "8s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"8s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config stores storefeed configuration.
type Config struct {
	// Seller is the marketplace seller whose listings are served.
	Seller string `json:"seller"`

	// UseProxy enables the proxied variants of every candidate source.
	UseProxy bool `json:"use_proxy"`

	// ProxyPrefix is prepended to target URLs for proxied attempts.
	ProxyPrefix string `json:"proxy_prefix,omitempty"`

	// Order is the fallback order, e.g. "direct:feed,proxy:feed,direct:listing,proxy:listing".
	// Empty means the built-in default.
	Order string `json:"order,omitempty"`

	// FetchTimeout bounds a single source attempt.
	FetchTimeout Duration `json:"fetch_timeout,omitempty"`

	// ResolveTimeout bounds a whole request across all attempts.
	ResolveTimeout Duration `json:"resolve_timeout,omitempty"`

	UserAgent string `json:"user_agent,omitempty"`

	// CacheMode is "no-store" (default) or "production".
	CacheMode            string   `json:"cache_mode,omitempty"`
	CacheMaxAge          Duration `json:"cache_max_age,omitempty"`
	StaleWhileRevalidate Duration `json:"stale_while_revalidate,omitempty"`

	// Addr is the listen address for the HTTP server.
	Addr     string `json:"addr,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Seller:               DefaultSeller,
		UseProxy:             true,
		ProxyPrefix:          source.DefaultProxyPrefix,
		FetchTimeout:         Duration(DefaultFetchTimeout),
		ResolveTimeout:       Duration(DefaultResolveTimeout),
		UserAgent:            fetch.DefaultUserAgent,
		CacheMode:            CacheModeNoStore,
		CacheMaxAge:          Duration(DefaultCacheMaxAge),
		StaleWhileRevalidate: Duration(DefaultStaleWhileRevalidate),
		Addr:                 DefaultAddr,
		LogLevel:             "info",
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "storefeed", "config.json")
}

// Load builds the configuration from defaults, the JSON file at path (the
// default path when empty; a missing file is fine), a .env file in the
// working directory, and STOREFEED_* environment variables, in that order.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the JSON file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("EBAY_SELLER"); ok {
		c.Seller = v
	}
	if v, ok := get("STOREFEED_SELLER"); ok {
		c.Seller = v
	}
	if v, ok := get("STOREFEED_USE_PROXY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFEED_USE_PROXY: %w", err)
		}
		c.UseProxy = b
	}
	if v, ok := get("STOREFEED_PROXY_PREFIX"); ok {
		c.ProxyPrefix = v
	}
	if v, ok := get("STOREFEED_ORDER"); ok {
		c.Order = v
	}
	if v, ok := get("STOREFEED_CACHE_MODE"); ok {
		c.CacheMode = v
	}
	if v, ok := get("STOREFEED_USER_AGENT"); ok {
		c.UserAgent = v
	}
	if v, ok := get("STOREFEED_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	for key, dst := range map[string]*Duration{
		"STOREFEED_FETCH_TIMEOUT":   &c.FetchTimeout,
		"STOREFEED_RESOLVE_TIMEOUT": &c.ResolveTimeout,
	} {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = Duration(d)
		}
	}
	if v, ok := get("PORT"); ok {
		c.Addr = ":" + v
	}
	if v, ok := get("STOREFEED_ADDR"); ok {
		c.Addr = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Seller) == "" {
		return ErrNoSeller
	}
	if c.CacheMode != CacheModeNoStore && c.CacheMode != CacheModeProduction {
		return fmt.Errorf("%w: %q", ErrInvalidCacheMode, c.CacheMode)
	}
	if c.FetchTimeout <= 0 || c.ResolveTimeout <= 0 {
		return ErrInvalidTimeout
	}
	order, err := c.SourceOrder()
	if err != nil {
		return err
	}
	if len(source.Strategies(order, c.UseProxy)) == 0 {
		return ErrNoSources
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// SourceOrder returns the configured fallback order, or the default one.
func (c *Config) SourceOrder() ([]source.Group, error) {
	if strings.TrimSpace(c.Order) == "" {
		return source.DefaultOrder, nil
	}
	return source.ParseOrder(c.Order)
}

// CacheControl returns the Cache-Control directive for successful responses.
func (c *Config) CacheControl() string {
	if c.CacheMode != CacheModeProduction {
		return "no-store"
	}
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d",
		int(time.Duration(c.CacheMaxAge).Seconds()),
		int(time.Duration(c.StaleWhileRevalidate).Seconds()))
}

// NewResolver creates a resolver wired to an HTTP fetcher using this configuration.
func (c *Config) NewResolver(logger *log.Logger) (*source.Resolver, error) {
	order, err := c.SourceOrder()
	if err != nil {
		return nil, err
	}
	client := fetch.New(fetch.Options{
		UserAgent: c.UserAgent,
		Timeout:   time.Duration(c.FetchTimeout),
	})
	return source.NewResolver(client, source.Options{
		Seller:         c.Seller,
		ProxyPrefix:    c.ProxyPrefix,
		Strategies:     source.Strategies(order, c.UseProxy),
		AttemptTimeout: time.Duration(c.FetchTimeout),
		SampleSize:     DebugSampleSize,
		Logger:         logger,
	}), nil
}
