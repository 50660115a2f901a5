package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Circularity/internal/api"
	"github.com/MikeSquared-Agency/Circularity/internal/catalog"
	"github.com/MikeSquared-Agency/Circularity/internal/config"
	"github.com/MikeSquared-Agency/Circularity/internal/hermes"
	"github.com/MikeSquared-Agency/Circularity/internal/metrics"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
	"github.com/MikeSquared-Agency/Circularity/internal/session"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	return cmd
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Logging, os.Stdout)
	slog.SetDefault(logger)

	scorer, err := newScorer(cfg)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded",
		"version", scorer.Catalog().Version(),
		"factors", scorer.Catalog().FactorCount(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Sessions
	sessions := session.NewManager(scorer, session.Options{
		TTL:           cfg.SessionTTL(),
		SweepInterval: cfg.SweepInterval(),
		MaxSessions:   cfg.Sessions.MaxSessions,
	}, m, logger)
	sessions.Start(ctx)
	defer sessions.Stop()
	logger.Info("session manager started", "ttl", cfg.SessionTTL(), "sweep_interval", cfg.SweepInterval())

	// API server
	router := api.NewRouter(scorer, sessions, hermesClient, m, cfg.Server.RateLimitPerMinute, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(prometheus.DefaultGatherer),
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = runServers(sigCtx, logger, map[string]*http.Server{
		"API":     apiServer,
		"metrics": metricsServer,
	})
	cancel()
	if err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// runServers serves until ctx is done or any server fails, then shuts every
// server down. The first serve error is returned.
func runServers(ctx context.Context, logger *slog.Logger, servers map[string]*http.Server) error {
	errCh := make(chan error, len(servers))
	for name, srv := range servers {
		go func(name string, srv *http.Server) {
			logger.Info(name+" server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(name+" server error", "error", err)
				errCh <- fmt.Errorf("%s server: %w", name, err)
			}
		}(name, srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case serveErr = <-errCh:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}
	return serveErr
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newScorer loads the configured catalog and validates the configured weights.
func newScorer(cfg *config.Config) (*scoring.Scorer, error) {
	c, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	w := weightsFrom(cfg.Scoring.Weights)
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	return scoring.NewScorer(c, w, slog.Default()), nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return c, nil
}

func weightsFrom(w config.ScoringWeights) scoring.WeightSet {
	return scoring.WeightSet{
		PhaseOfIntegration:              w.PhaseOfIntegration,
		EnvironmentalConsideration:      w.EnvironmentalConsideration,
		OrganizationalAttributes:        w.OrganizationalAttributes,
		ProjectTeamCapacity:             w.ProjectTeamCapacity,
		ProductFeatureAndCircularDesign: w.ProductFeatureAndCircularDesign,
	}
}
