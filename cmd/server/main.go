// Package main provides the entry point for the research metadata API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/helixir/research-metadata-api/internal/aggregator"
	"github.com/helixir/research-metadata-api/internal/config"
	"github.com/helixir/research-metadata-api/internal/observability"
	"github.com/helixir/research-metadata-api/internal/papersources"
	"github.com/helixir/research-metadata-api/internal/papersources/crossref"
	"github.com/helixir/research-metadata-api/internal/papersources/openalex"
	httpserver "github.com/helixir/research-metadata-api/internal/server/http"
)

// version is set at build time via ldflags.
var version = "dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "research-metadata-api",
	Short: "Scholarly metadata search, DOI lookup and title trends over OpenAlex and Crossref",
	Long: `research-metadata-api serves a small JSON API over two scholarly metadata
providers. Results from OpenAlex and Crossref are normalized into one paper
shape, deduplicated by DOI, and summarized as n-gram trends over titles.

Configuration comes from defaults, an optional YAML file, and RESEARCHMETA_*
environment variables, in increasing order of precedence.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), configFile)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml, ./config/config.yaml or /etc/research-metadata-api/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(parent context.Context, cfgFile string) error {
	// Load configuration.
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger.Info().Str("version", version).Msg("research-metadata-api starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	var observer papersources.RequestObserver
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		observer = metrics
	}

	// Create provider clients. Registration order is the merge and lookup order.
	sources := cfg.PaperSources
	openalexClient := openalex.New(openalex.Config{
		BaseURL:    sources.OpenAlex.BaseURL,
		Email:      sources.ContactEmail,
		UserAgent:  sources.UserAgent,
		Timeout:    sources.OpenAlex.Timeout,
		RateLimit:  sources.OpenAlex.RateLimit,
		BurstSize:  sources.OpenAlex.Burst,
		MaxPerPage: sources.OpenAlex.MaxPerPage,
		Observer:   observer,
		Logger:     logger,
	})
	crossrefClient := crossref.New(crossref.Config{
		BaseURL:    sources.Crossref.BaseURL,
		Email:      sources.ContactEmail,
		UserAgent:  sources.UserAgent,
		Timeout:    sources.Crossref.Timeout,
		RateLimit:  sources.Crossref.RateLimit,
		BurstSize:  sources.Crossref.Burst,
		MaxPerPage: sources.Crossref.MaxPerPage,
		Observer:   observer,
		Logger:     logger,
	})
	registry := papersources.NewRegistry(sources.Concurrent, openalexClient, crossrefClient)

	logger.Info().
		Str("openalex", sources.OpenAlex.BaseURL).
		Str("crossref", sources.Crossref.BaseURL).
		Bool("concurrent", sources.Concurrent).
		Msg("paper sources configured")

	service := aggregator.New(registry, metrics, logger, aggregator.Options{
		PerYearTop: cfg.API.PerYearTop,
	})

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Limits: httpserver.Limits{
			DefaultLimit: cfg.API.DefaultLimit,
			MaxLimit:     cfg.API.MaxLimit,
			DefaultTop:   cfg.API.DefaultTop,
			MaxTop:       cfg.API.MaxTop,
		},
	}
	httpSrv := httpserver.NewServer(httpCfg, service, metrics, logger)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	// Start HTTP REST API server in background.
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Start metrics server if configured.
	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("research-metadata-api is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down research-metadata-api")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("research-metadata-api shutdown complete")
	return nil
}
