package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/embedstack/wvtriage/internal/api"
	"github.com/embedstack/wvtriage/internal/cache"
	"github.com/embedstack/wvtriage/internal/catalog"
	"github.com/embedstack/wvtriage/internal/config"
	"github.com/embedstack/wvtriage/internal/engine"
	"github.com/embedstack/wvtriage/internal/metrics"
	"github.com/embedstack/wvtriage/internal/repo"
	"github.com/embedstack/wvtriage/internal/services"
	"github.com/embedstack/wvtriage/internal/utils"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the triage engine as an HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting triage-engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	var catalogs services.CatalogSource
	if cfg.Catalogs.Watch && cfg.Catalogs.Path != "" {
		watcher, err := catalog.NewWatcher(cfg.Catalogs.Path, logger)
		if err != nil {
			return fmt.Errorf("watch catalog: %w", err)
		}
		defer watcher.Close()
		catalogs = watcher
	} else {
		cat, err := catalog.Load(cfg.Catalogs.Path)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		catalogs = services.StaticCatalog{Catalog: cat}
	}

	var history services.HistoryRepo
	var reportCache *cache.ReportCache
	if cfg.History.Enabled {
		store, err := repo.NewHistoryStore(cfg.History.Path, logger)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
		history = store
		reportCache = cache.NewReportCache(cfg.History.CacheTTL)
	}

	pipeline := engine.NewPipeline(logger, cfg.Analysis.RuntimeMarker)
	svc := services.NewTriageService(logger, pipeline, catalogs, history, reportCache, cfg.Analysis.MaxLines)

	server, err := api.NewServer(cfg.Server, api.NewHandlers(svc, logger))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("api server listening", slog.String("address", server.Address()))
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("api server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("triage-engine stopped")
	return nil
}
