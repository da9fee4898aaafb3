// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration and builds the shared logger and listing resolver

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harper/storefeed/internal/config"
	"github.com/harper/storefeed/internal/source"
)

var (
	configPath string
	sellerFlag string
	logLevel   string
	noProxy    bool

	cfg      *config.Config
	logger   *log.Logger
	resolver *source.Resolver
)

var rootCmd = &cobra.Command{
	Use:   "storefeed",
	Short: "Marketplace seller listings as a JSON feed",
	Long: `storefeed fetches a marketplace seller's listings and serves them as
normalized JSON items (id, title, price, currency, image, url).

No API key is needed: it tries the seller's RSS/Atom feeds and search-results
pages in priority order, directly and through a public proxy, and returns the
first source that yields items.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if sellerFlag != "" {
			cfg.Seller = sellerFlag
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if noProxy {
			cfg.UseProxy = false
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger = newLogger(cfg.LogLevel)

		resolver, err = cfg.NewResolver(logger)
		if err != nil {
			return fmt.Errorf("failed to build resolver: %w", err)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/storefeed/config.json)")
	rootCmd.PersistentFlags().StringVar(&sellerFlag, "seller", "", "seller to look up (overrides config and STOREFEED_SELLER)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noProxy, "no-proxy", false, "never route requests through the public proxy")
}

// newLogger builds the stderr logger. stdout stays free for command output
// and the MCP stdio transport.
func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "storefeed",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}
