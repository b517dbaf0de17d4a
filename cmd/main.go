package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	directoryadapter "github.com/watchrank/watchrank/internal/adapters/directory"
	"github.com/watchrank/watchrank/internal/adapters/http/api"
	"github.com/watchrank/watchrank/internal/adapters/repository"
	app "github.com/watchrank/watchrank/internal/app"
	"github.com/watchrank/watchrank/internal/config"
	"github.com/watchrank/watchrank/internal/domain/directory"
	"github.com/watchrank/watchrank/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Optional .env for local development; environment wins over file
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Initialize logging
	var logOpts []logger.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithRotatingFile(cfg.LogFile))
	}
	if err := logger.Init(logOpts...); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Build storage and directories per the configured backend.
	opts := []app.Option{
		app.WithLogger(log),
		app.WithShardCount(cfg.ShardCount),
	}

	switch cfg.Storage {
	case config.StoragePostgres:
		store, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN, cfg.LogLevel == "debug")
		if err != nil {
			log.Error(ctx, "failed to open postgres store", logger.Error(err))
			return
		}
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error(ctx, "failed to ensure schema", logger.Error(err))
			return
		}
		opts = append(opts, app.WithStore(store), app.WithDirectories(postgresDirectories(store)))
	default:
		var cat directoryadapter.Catalog
		if cfg.CatalogPath != "" {
			cat, err = directoryadapter.LoadCatalog(cfg.CatalogPath)
			if err != nil {
				log.Error(ctx, "failed to load catalog", logger.String("path", cfg.CatalogPath), logger.Error(err))
				return
			}
		}
		mem := directoryadapter.NewMemory(cat)
		opts = append(opts, app.WithDirectories(mem, mem))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, api.Limits{
		MaxPageSize:     cfg.MaxPageSize,
		DefaultPageSize: cfg.DefaultPageSize,
	})
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// postgresDirectories builds both directory collaborators over the store's
// database connection.
func postgresDirectories(store *repository.PostgresStore) (directory.UserDirectory, directory.SubjectTopicDirectory) {
	dir := directoryadapter.NewPostgres(store.DB())
	return dir, dir
}
