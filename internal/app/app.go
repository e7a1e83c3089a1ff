package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres"
	idearepo "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/idea"
	linkrepo "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/link"
	tagrepo "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres/tag"
	"github.com/heartmarshall/ideaflow-backend/internal/adapter/provider/analysis"
	"github.com/heartmarshall/ideaflow-backend/internal/config"
	"github.com/heartmarshall/ideaflow-backend/internal/service/enrichment"
	ideasvc "github.com/heartmarshall/ideaflow-backend/internal/service/idea"
	"github.com/heartmarshall/ideaflow-backend/internal/transport/middleware"
	"github.com/heartmarshall/ideaflow-backend/internal/transport/rest"
)

// Run loads configuration, connects to the database, starts the enrichment
// worker and serves HTTP until ctx is cancelled. Shutdown stops the HTTP
// server first, then the worker, so no new task arrives while the last
// attempt settles.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ideas := idearepo.New(pool)
	tags := tagrepo.New(pool)
	links := linkrepo.New(pool)

	worker := enrichment.NewWorker(
		logger,
		ideas,
		tags,
		links,
		analysis.NewClient(cfg.Analysis, logger),
		enrichment.PolicyFromConfig(cfg.Enrichment),
		enrichment.NewMetrics(reg),
	)

	ideaService := ideasvc.NewService(logger, ideas, tags, links, postgres.NewTxManager(pool), worker)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.WritesPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
	}

	handler := rest.NewRouter(rest.RouterDeps{
		Ideas:       rest.NewIdeaHandler(ideaService, logger),
		Health:      rest.NewHealthHandler(pool, worker, BuildVersion()),
		Gatherer:    reg,
		HTTPMetrics: middleware.NewHTTPMetrics(reg),
		RateLimiter: limiter,
		CORS:        cfg.CORS,
		RateLimit:   cfg.RateLimit,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	worker.Start(ctx)
	defer worker.Stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}

	return nil
}
