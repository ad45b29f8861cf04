// Package config provides the typed application configuration built from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/newscheck/internal/common"
)

// Config is the resolved configuration for every command.
type Config struct {
	Logging    LoggingConfig
	Data       DataConfig
	Model      ModelConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Server     ServerConfig
	Scraper    ScraperConfig
	Training   TrainingConfig
	Validation ValidationConfig
}

// DataConfig locates the labelled training CSV.
type DataConfig struct {
	Path string
}

// ModelConfig locates the persisted model artifact.
type ModelConfig struct {
	Path string
}

// DatabaseConfig locates the SQLite history database.
type DatabaseConfig struct {
	Path string
}

// TrainingConfig holds split and optimiser settings.
type TrainingConfig struct {
	Samples     int
	TestSize    float64
	Seed        uint64
	MaxFeatures int
	MaxIter     int
	C           float64
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string
	CORSOrigins  []string
	CertDir      string
	MaxBatch     int
	MaxBodyBytes int64
	TLS          bool
}

// ValidationConfig bounds accepted article length in runes.
type ValidationConfig struct {
	MinLength int
	MaxLength int
}

// RedisConfig enables the prediction cache when URL is set.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// ScraperConfig configures URL article extraction.
type ScraperConfig struct {
	Timeout   time.Duration
	MaxLength int
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string
	Format string
}

// EnvPrefix namespaces environment overrides, e.g. NEWSCHECK_SERVER_ADDR.
const EnvPrefix = "NEWSCHECK"

// BindEnv makes v consult NEWSCHECK_* variables for every dotted key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Data:     DataConfig{Path: "data/news.csv"},
		Model:    ModelConfig{Path: "models/fake_news_model.gz"},
		Database: DatabaseConfig{Path: "~/.local/share/newscheck/newscheck.db"},
		Training: TrainingConfig{
			Samples:     2000,
			TestSize:    0.2,
			Seed:        42,
			MaxFeatures: 5000,
			MaxIter:     1000,
			C:           1.0,
		},
		Server: ServerConfig{
			Addr:         ":8000",
			CORSOrigins:  []string{"*"},
			MaxBatch:     100,
			MaxBodyBytes: 1 << 20,
			CertDir:      "~/.local/share/newscheck/certs",
		},
		Validation: ValidationConfig{MinLength: 10, MaxLength: 50000},
		Redis:      RedisConfig{TTL: time.Hour},
		Scraper:    ScraperConfig{Timeout: 10 * time.Second, MaxLength: 50000},
		Logging:    LoggingConfig{Level: "info", Format: "console"},
	}
}

// SetDefaults registers Default() with v so that config files and
// NEWSCHECK_* environment variables only need to override what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("model.path", d.Model.Path)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("training.samples", d.Training.Samples)
	v.SetDefault("training.test_size", d.Training.TestSize)
	v.SetDefault("training.seed", d.Training.Seed)
	v.SetDefault("training.max_features", d.Training.MaxFeatures)
	v.SetDefault("training.max_iter", d.Training.MaxIter)
	v.SetDefault("training.c", d.Training.C)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.max_batch", d.Server.MaxBatch)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)
	v.SetDefault("server.tls", d.Server.TLS)
	v.SetDefault("server.cert_dir", d.Server.CertDir)
	v.SetDefault("validation.min_length", d.Validation.MinLength)
	v.SetDefault("validation.max_length", d.Validation.MaxLength)
	v.SetDefault("redis.url", d.Redis.URL)
	v.SetDefault("redis.ttl", d.Redis.TTL)
	v.SetDefault("scraper.timeout", d.Scraper.Timeout)
	v.SetDefault("scraper.max_length", d.Scraper.MaxLength)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// FromViper reads every key from v, expands paths and validates the result.
func FromViper(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		Data:     DataConfig{Path: ExpandPath(v.GetString("data.path"))},
		Model:    ModelConfig{Path: ExpandPath(v.GetString("model.path"))},
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Training: TrainingConfig{
			Samples:     v.GetInt("training.samples"),
			TestSize:    v.GetFloat64("training.test_size"),
			Seed:        v.GetUint64("training.seed"),
			MaxFeatures: v.GetInt("training.max_features"),
			MaxIter:     v.GetInt("training.max_iter"),
			C:           v.GetFloat64("training.c"),
		},
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			CORSOrigins:  v.GetStringSlice("server.cors_origins"),
			MaxBatch:     v.GetInt("server.max_batch"),
			MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
			TLS:          v.GetBool("server.tls"),
			CertDir:      ExpandPath(v.GetString("server.cert_dir")),
		},
		Validation: ValidationConfig{
			MinLength: v.GetInt("validation.min_length"),
			MaxLength: v.GetInt("validation.max_length"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
			TTL: v.GetDuration("redis.ttl"),
		},
		Scraper: ScraperConfig{
			Timeout:   v.GetDuration("scraper.timeout"),
			MaxLength: v.GetInt("scraper.max_length"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Model.Path == "":
		return fmt.Errorf("%w: model.path is required", common.ErrMissingConfig)
	case c.Training.TestSize <= 0 || c.Training.TestSize >= 1:
		return fmt.Errorf("%w: training.test_size must be in (0, 1), got %g", common.ErrInvalidConfig, c.Training.TestSize)
	case c.Training.Samples < 2:
		return fmt.Errorf("%w: training.samples must be at least 2", common.ErrInvalidConfig)
	case c.Training.MaxFeatures <= 0:
		return fmt.Errorf("%w: training.max_features must be positive", common.ErrInvalidConfig)
	case c.Training.MaxIter <= 0:
		return fmt.Errorf("%w: training.max_iter must be positive", common.ErrInvalidConfig)
	case c.Training.C <= 0:
		return fmt.Errorf("%w: training.c must be positive", common.ErrInvalidConfig)
	case c.Server.MaxBatch <= 0:
		return fmt.Errorf("%w: server.max_batch must be positive", common.ErrInvalidConfig)
	case c.Server.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: server.max_body_bytes must be positive", common.ErrInvalidConfig)
	case c.Server.TLS && c.Server.CertDir == "":
		return fmt.Errorf("%w: server.cert_dir is required when server.tls is set", common.ErrMissingConfig)
	case c.Validation.MinLength < 0 || c.Validation.MaxLength < c.Validation.MinLength:
		return fmt.Errorf("%w: validation lengths must satisfy 0 <= min_length <= max_length", common.ErrInvalidConfig)
	case c.Scraper.Timeout <= 0:
		return fmt.Errorf("%w: scraper.timeout must be positive", common.ErrInvalidConfig)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if f := strings.ToLower(c.Logging.Format); f != "console" && f != "json" {
		return fmt.Errorf("%w: logging.format must be console or json, got %q", common.ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
