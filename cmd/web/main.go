package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	cacheMaxAge     = "public, max-age=300"
	limiterSweep    = time.Minute
	limiterVisitTTL = 3 * time.Minute
)

// dashboardHandler renders the page shell with the filter options of the
// loaded dataset.
func dashboardHandler(analytics *services.Analytics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		opts, err := analytics.Filters(ctx)
		if err != nil {
			observability.LoggerFrom(ctx, logger).Error("load filter options", "error", err)
			http.Error(w, "sales dataset is unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(opts).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"csv_file", cfg.Dataset.CSVFile,
		"cache_dir", cfg.Dataset.CacheDir,
	)

	source := services.NewCSVSource(cfg.Dataset.CSVFile, cfg.Dataset.CacheDir, logger)
	analytics := services.NewAnalytics(services.NewDataset(source, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.LoadTimeout)
	start := time.Now()
	err = analytics.Warm(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to load sales dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("sales dataset ready", "duration", time.Since(start))

	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, logger),
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	go rateLimiter.Cleanup(limiterCtx, limiterSweep, limiterVisitTTL)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      srv.Handler(cfg.Security, rateLimiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping rate limiter cleanup")
		stopLimiter()
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
