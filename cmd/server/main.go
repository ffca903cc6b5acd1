package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/feedflow/feedflow/internal/config"
	"github.com/feedflow/feedflow/internal/history"
	"github.com/feedflow/feedflow/internal/logging"
	"github.com/feedflow/feedflow/internal/mapping"
	"github.com/feedflow/feedflow/internal/web"
	"github.com/feedflow/feedflow/internal/workflow"
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
		"max_file_size", cfg.Upload.MaxFileSize,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"persistent_history", cfg.Database.URL != "",
	)

	ctx := context.Background()

	// Snapshot store: Postgres when a DATABASE_URL is configured, otherwise
	// an in-memory store that lives as long as the process.
	var repo history.Repository
	if cfg.Database.URL != "" {
		pool, err := connectPool(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := history.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare snapshot table", "error", err)
			os.Exit(1)
		}
		repo = pg
	} else {
		slog.Info("no DATABASE_URL configured, history is in-memory only")
		repo = history.NewMemory()
	}

	// Target field catalog: built-in unless a YAML override is configured.
	catalog := mapping.DefaultCatalog()
	if cfg.Catalog.Path != "" {
		catalog, err = mapping.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			slog.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
			os.Exit(1)
		}
		slog.Info("catalog loaded", "path", cfg.Catalog.Path, "fields", len(catalog))
	}

	service := workflow.NewService(repo, catalog, workflow.Config{
		MaxFileSize:  cfg.Upload.MaxFileSize,
		PreviewRows:  cfg.Upload.PreviewRows,
		KeepFullRows: cfg.Upload.KeepFullRows,
	})

	rateLimit := 0
	if cfg.Rate.Enabled {
		rateLimit = cfg.Rate.RequestsPerMinute
	}
	server := web.NewServer(service, web.Options{
		MaxUploadSize:  cfg.Upload.MaxFileSize,
		RateLimit:      rateLimit,
		RateWindow:     time.Minute,
		TrustedProxies: cfg.Security.TrustedProxies,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connectPool builds a pgx pool from config and verifies the connection.
func connectPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
