package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/common"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 2000, cfg.Training.Samples)
	assert.Equal(t, 0.2, cfg.Training.TestSize)
	assert.Equal(t, uint64(42), cfg.Training.Seed)
	assert.Equal(t, 10, cfg.Validation.MinLength)
	assert.Equal(t, 50000, cfg.Validation.MaxLength)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestFromViper_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
model:
  path: /tmp/model.gz
training:
  test_size: 0.25
  seed: 7
server:
  addr: 127.0.0.1:9000
  max_batch: 10
redis:
  url: redis://localhost:6379/0
  ttl: 5m
scraper:
  timeout: 3s
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/model.gz", cfg.Model.Path)
	assert.Equal(t, 0.25, cfg.Training.TestSize)
	assert.Equal(t, uint64(7), cfg.Training.Seed)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.MaxBatch)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 3*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	// Untouched keys keep their defaults.
	assert.Equal(t, 5000, cfg.Training.MaxFeatures)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("NEWSCHECK_SERVER_ADDR", ":9999")

	v := viper.New()
	BindEnv(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate func(*Config)
		want   error
		name   string
	}{
		{name: "missing model path", mutate: func(c *Config) { c.Model.Path = "" }, want: common.ErrMissingConfig},
		{name: "test size zero", mutate: func(c *Config) { c.Training.TestSize = 0 }, want: common.ErrInvalidConfig},
		{name: "test size one", mutate: func(c *Config) { c.Training.TestSize = 1 }, want: common.ErrInvalidConfig},
		{name: "negative C", mutate: func(c *Config) { c.Training.C = -1 }, want: common.ErrInvalidConfig},
		{name: "zero batch", mutate: func(c *Config) { c.Server.MaxBatch = 0 }, want: common.ErrInvalidConfig},
		{name: "tls without cert dir", mutate: func(c *Config) { c.Server.TLS, c.Server.CertDir = true, "" }, want: common.ErrMissingConfig},
		{name: "inverted lengths", mutate: func(c *Config) { c.Validation.MaxLength = 5 }, want: common.ErrInvalidConfig},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, want: common.ErrInvalidConfig},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, want: common.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("NEWSCHECK_TEST_DIR", "/srv/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "models", "m.gz"), ExpandPath("~/models/m.gz"))
	assert.Equal(t, "/srv/data/news.csv", ExpandPath("$NEWSCHECK_TEST_DIR/news.csv"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
}
