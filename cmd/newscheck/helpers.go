package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/newscheck/internal/cache"
	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/config"
	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/scraper"
	"github.com/Veraticus/newscheck/internal/service"
	"github.com/Veraticus/newscheck/internal/storage"
)

// loadConfig resolves the typed configuration from flags, file and environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return config.Config{}, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the history database and runs migrations.
func initStorage(ctx context.Context, cfg config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadModel reads the trained artifact, turning a missing file into a hint.
func loadModel(cfg config.Config) (*detector.Model, error) {
	m, err := detector.Load(cfg.Model.Path)
	if errors.Is(err, detector.ErrArtifactNotFound) {
		return nil, common.NewUserError("No trained model found. Run 'newscheck train' or 'newscheck setup' first", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return m, nil
}

// openCache connects to Redis when configured. An unreachable server
// disables caching rather than failing the command.
func openCache(ctx context.Context, cfg config.Config) cache.Cache {
	c, err := cache.New(cfg.Redis.URL, cfg.Redis.TTL)
	if err != nil {
		slog.Warn("Prediction cache disabled", "error", err)
		return cache.Noop{}
	}

	if rc, ok := c.(*cache.RedisCache); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			slog.Warn("Prediction cache unreachable, continuing without it", "error", err)
			_ = rc.Close()
			return cache.Noop{}
		}
		slog.Debug("Prediction cache connected")
	}
	return c
}

// newScraper builds the article fetcher from configuration.
func newScraper(cfg config.Config) *scraper.Scraper {
	return scraper.New(
		scraper.WithTimeout(cfg.Scraper.Timeout),
		scraper.WithMaxContentLength(cfg.Scraper.MaxLength),
	)
}

// checkerDeps holds everything opened for a Checker so it can be closed together.
type checkerDeps struct {
	checker *service.Checker
	store   service.Storage
	cache   cache.Cache
}

func (d *checkerDeps) Close() {
	if d.cache != nil {
		_ = d.cache.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

// newChecker wires a Checker around m, which may be nil. History and cache
// are optional; failures to open them are logged.
func newChecker(ctx context.Context, cfg config.Config, m *detector.Model) *checkerDeps {
	deps := &checkerDeps{cache: openCache(ctx, cfg)}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Warn("Prediction history disabled", "error", err)
	} else {
		deps.store = store
	}

	checkerCfg := service.CheckerConfig{
		Predictor: detector.NewPredictor(m),
		Validator: service.NewValidator(cfg.Validation.MinLength, cfg.Validation.MaxLength),
		Cache:     deps.cache,
		Fetcher:   newScraper(cfg),
	}
	if deps.store != nil {
		checkerCfg.Store = deps.store
	}
	deps.checker = service.NewChecker(checkerCfg)
	return deps
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
