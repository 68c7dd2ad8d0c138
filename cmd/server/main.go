package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/assetdesk/importer/internal/config"
	"github.com/assetdesk/importer/internal/filestore"
	"github.com/assetdesk/importer/internal/logging"
	"github.com/assetdesk/importer/internal/pipeline"
	"github.com/assetdesk/importer/internal/store"
	"github.com/assetdesk/importer/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"import_dir", cfg.Import.Dir,
		"db_max_conns", cfg.Database.MaxConns,
		"max_concurrent_jobs", cfg.Import.MaxConcurrentJobs,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Parse and configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	// Apply schema and seed default configuration
	if err := store.Migrate(ctx, pool); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	configStore := store.NewConfig(pool)
	if cfg.Import.SeedDefaults {
		if err := configStore.EnsureDefaults(ctx); err != nil {
			slog.Error("failed to seed default configuration", "error", err)
			os.Exit(1)
		}
	}

	files := filestore.New(cfg.Import.Dir, cfg.Import.MaxFileSize)

	orch := pipeline.NewOrchestrator(pipeline.Stores{
		Jobs:    store.NewJobs(pool),
		Staging: store.NewStaging(pool),
		Assets:  store.NewAssets(pool),
		Config:  configStore,
		Files:   files,
	}, slog.Default(), pipeline.Options{
		MaxConcurrentJobs: cfg.Import.MaxConcurrentJobs,
		JobTimeout:        cfg.Import.JobTimeout,
	})

	server := web.NewServer(orch, configStore, cfg)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		serverErr <- server.Start(cfg.Server.Addr())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	case <-sigCh:
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Drain in-flight import jobs first; the pool closes when main
	// returns, so jobs must reach a stable status before that.
	done := make(chan struct{})
	go func() {
		orch.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("all import jobs finished")
	case <-shutdownCtx.Done():
		slog.Warn("import jobs did not finish in time")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
