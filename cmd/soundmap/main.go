package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/soundmap/soundmap/internal/api"
	"github.com/soundmap/soundmap/internal/cache"
	"github.com/soundmap/soundmap/internal/config"
	"github.com/soundmap/soundmap/internal/database"
	"github.com/soundmap/soundmap/internal/geocode"
	"github.com/soundmap/soundmap/internal/logging"
	"github.com/soundmap/soundmap/internal/provider"
	"github.com/soundmap/soundmap/internal/provider/musicbrainz"
	"github.com/soundmap/soundmap/internal/provider/wikidata"
	"github.com/soundmap/soundmap/internal/provider/wikipedia"
	"github.com/soundmap/soundmap/internal/resolver"
	"github.com/soundmap/soundmap/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	configPath := os.Getenv("SM_CONFIG_PATH")
	if configPath == "" {
		configPath = "/data/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		FilePath:      cfg.Logging.FilePath,
		FileMaxSizeMB: cfg.Logging.FileMaxSizeMB,
		FileMaxFiles:  cfg.Logging.FileMaxFiles,
	})
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close() //nolint:errcheck
	}

	limiters := provider.NewRateLimiterMap(cfg.MusicBrainzInterval())
	retries := cfg.Providers.MaxRetries

	mb := musicbrainz.New(limiters, logger, retries)
	wd := wikidata.New(limiters, logger, retries)
	wp := wikipedia.New(limiters, logger, retries)
	geocoder := geocode.NewCascade(
		geocode.NewNominatim(limiters, logger, retries),
		geocode.NewPhoton(limiters, logger, retries),
		logger,
	)
	res := resolver.New(mb, wd, wp, geocoder, logger)

	router := api.NewRouter(api.RouterDeps{
		Resolver:     res,
		Geocoder:     geocoder,
		Store:        store,
		CacheTTL:     cfg.CacheTTL(),
		ResolveDelay: cfg.ResolveDelay(),
		MaxBatch:     cfg.Resolver.MaxBatch,
		Logger:       logger,
		BasePath:     cfg.Server.BasePath,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router.Handler(),
		ReadTimeout: 15 * time.Second,
		// A batch resolve can stream for minutes; no write deadline.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version.Version),
			slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// buildStore selects the cache backend: Redis when an address is configured,
// the embedded SQLite database when a path is, nil (cache-less) otherwise.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.Cache.RedisAddr != "" {
		store, err := cache.NewRedisStore(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("connecting cache: %w", err)
		}
		logger.Info("cache ready",
			slog.String("backend", "redis"),
			slog.String("addr", cfg.Cache.RedisAddr))
		return store, nil
	}

	if cfg.Cache.SQLitePath != "" {
		db, err := database.Open(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		logger.Info("cache ready",
			slog.String("backend", "sqlite"),
			slog.String("path", cfg.Cache.SQLitePath))
		return &sqliteStore{SQLiteStore: cache.NewSQLiteStore(db), db: db}, nil
	}

	logger.Warn("no cache configured; every request fully resolves")
	return nil, nil
}

// sqliteStore ties the database handle's lifetime to the store.
type sqliteStore struct {
	*cache.SQLiteStore
	db *sql.DB
}

func (s *sqliteStore) Close() error { return s.db.Close() }
