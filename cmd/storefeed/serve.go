// ABOUTME: Serve command running the listings HTTP endpoint
// ABOUTME: Starts the gin server and shuts it down gracefully on SIGINT/SIGTERM

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/harper/storefeed/internal/config"
	"github.com/harper/storefeed/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve listings over HTTP",
	Long: `Serve the seller's listings as JSON.

  GET /api/listings          {"items": [...]}
  GET /api/listings?debug=1  every source tried, with item counts and raw samples
  GET /healthz               liveness probe

The endpoint always answers 200; when no source yields items the list is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}

		if logger.GetLevel() > log.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		s := server.New(resolver, server.Options{
			CacheControl:   cfg.CacheControl(),
			ResolveTimeout: time.Duration(cfg.ResolveTimeout),
			Logger:         logger,
		})

		srv := &http.Server{
			Addr:              addr,
			Handler:           s.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server started", "addr", addr, "seller", cfg.Seller, "cache", cfg.CacheControl())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		logger.Info("graceful shutdown complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
}
