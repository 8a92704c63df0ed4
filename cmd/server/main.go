package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/impactility/vc-api/internal/platform/config"
	"github.com/impactility/vc-api/internal/platform/database"
	"github.com/impactility/vc-api/internal/platform/logger"
	"github.com/impactility/vc-api/internal/platform/metrics"
	"github.com/impactility/vc-api/internal/platform/middleware"
	platformredis "github.com/impactility/vc-api/internal/platform/redis"
	"github.com/impactility/vc-api/internal/workflow/callback"
	"github.com/impactility/vc-api/internal/workflow/handler"
	"github.com/impactility/vc-api/internal/workflow/service"
	"github.com/impactility/vc-api/internal/workflow/store"
	"github.com/impactility/vc-api/internal/workflow/verifier"
	"github.com/impactility/vc-api/migrations"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Exchange logic lives in internal/workflow.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing vc-api",
		"addr", cfg.Addr,
		"base_url", cfg.BaseURL,
		"store", cfg.Store,
	)

	if cfg.VerifierURL == "" {
		log.Error("VC_API_VERIFIER_URL is required")
		os.Exit(1)
	}

	st, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New()
	dispatcher := callback.NewDispatcher(log,
		callback.WithHTTPClient(&http.Client{Timeout: cfg.CallbackTimeout}),
		callback.WithMetrics(m),
	)
	submissions := verifier.NewSubmissionVerifier(verifier.NewRemoteVerifier(cfg.VerifierURL))

	svc := service.New(st, submissions, dispatcher, cfg.BaseURL,
		service.WithLogger(log),
		service.WithMetrics(m),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	handler.New(svc, log).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	// Let in-flight webhook deliveries drain before the process exits.
	dispatcher.Wait()

	log.Info("server stopped")
}

// buildStore constructs the configured persistence backend. The returned
// cleanup is safe to call even on partial initialization.
func buildStore(cfg config.Server, log *slog.Logger) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		poolCfg := database.DefaultConfig()
		poolCfg.URL = cfg.DatabaseURL
		pool, err := database.New(poolCfg)
		if err != nil {
			return nil, func() {}, err
		}
		if pool == nil {
			return nil, func() {}, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		if err := applyMigrations(pool); err != nil {
			_ = pool.Close()
			return nil, func() {}, err
		}
		log.Info("using postgres store")
		return store.NewPostgres(pool.DB()), func() { _ = pool.Close() }, nil

	case config.StoreRedis:
		client, err := platformredis.New(cfg.RedisAddr)
		if err != nil {
			return nil, func() {}, err
		}
		if client == nil {
			return nil, func() {}, fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
		log.Info("using redis store")
		return store.NewRedis(client.Client), func() { _ = client.Close() }, nil

	default:
		log.Info("using in-memory store")
		return store.NewInMemoryStore(), func() {}, nil
	}
}

// applyMigrations executes the embedded schema files in lexical order. The
// statements are idempotent, so reapplying on startup is safe.
func applyMigrations(pool *database.Pool) error {
	entries, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		raw, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.DB().Exec(string(raw)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
