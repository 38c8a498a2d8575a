// Package main provides the entry point for the research search service
// HTTP server.
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

	"github.com/paperscout/research-search-service/internal/config"
	"github.com/paperscout/research-search-service/internal/crossref"
	"github.com/paperscout/research-search-service/internal/gateway"
	"github.com/paperscout/research-search-service/internal/observability"
	"github.com/paperscout/research-search-service/internal/ratelimit"
	httpserver "github.com/paperscout/research-search-service/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Str("environment", cfg.Environment).Msg("research-search-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("research_search")

	// Per-client admission limiter with periodic idle-key eviction.
	limiter := ratelimit.New(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	go limiter.Run(ctx, cfg.RateLimit.SweepInterval)
	go reportLimiterKeys(ctx, limiter, metrics)

	// Upstream CrossRef client.
	upstream := crossref.New(crossref.Config{
		BaseURL:   cfg.CrossRef.BaseURL,
		Mailto:    cfg.CrossRef.Mailto,
		Timeout:   cfg.CrossRef.Timeout,
		RateLimit: cfg.CrossRef.RateLimit,
		BurstSize: cfg.CrossRef.BurstSize,
	})

	// Search gateway.
	gw := gateway.New(upstream, limiter, gateway.Config{
		DefaultRows: cfg.Search.DefaultRows,
		MaxRows:     cfg.Search.MaxRows,
	}, logger, metrics)

	// Static assets are only served in production builds.
	staticDir := ""
	if cfg.IsProduction() {
		staticDir = cfg.Server.StaticDir
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsPath:     cfg.Metrics.Path,
		StaticDir:       staticDir,
	}
	httpSrv := httpserver.NewServer(httpCfg, gw, logger)

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		logger.Info().Str("address", httpCfg.Address).Msg("HTTP server starting")
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("address", httpCfg.Address).
		Str("crossref_base_url", cfg.CrossRef.BaseURL).
		Msg("research-search-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down research-search-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("research-search-service shutdown complete")
	return nil
}

// reportLimiterKeys keeps the tracked-client gauge current.
func reportLimiterKeys(ctx context.Context, limiter *ratelimit.Limiter, metrics *observability.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetRateLimitKeys(limiter.Keys())
		}
	}
}
