// ABOUTME: Centralized configuration defaults for storefeed
// ABOUTME: Contains timeouts, cache windows and server settings

package config

import "time"

// Seller settings
const (
	DefaultSeller = "rickytradesllc"
)

// HTTP settings
const (
	DefaultFetchTimeout   = 8 * time.Second
	DefaultResolveTimeout = 45 * time.Second
	DefaultAddr           = ":8080"
	ShutdownTimeout       = 15 * time.Second
)

// Cache settings
const (
	CacheModeNoStore    = "no-store"
	CacheModeProduction = "production"

	DefaultCacheMaxAge          = 15 * time.Minute
	DefaultStaleWhileRevalidate = 24 * time.Hour
)

// DebugSampleSize bounds the raw document prefix echoed per diagnostic attempt.
const DebugSampleSize = 600
