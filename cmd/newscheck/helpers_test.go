package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/newscheck/internal/checkpoint"
	"github.com/Veraticus/newscheck/internal/config"
	"github.com/Veraticus/newscheck/internal/dataset"
	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/storage"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		want string
		size int64
	}{
		{size: 0, want: "0 B"},
		{size: 1023, want: "1023 B"},
		{size: 1024, want: "1.0 KB"},
		{size: 1536, want: "1.5 KB"},
		{size: 5 * 1024 * 1024, want: "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFileSize(tt.size))
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", formatRelativeTime(now))
	assert.Equal(t, "5 minutes ago", formatRelativeTime(now.Add(-5*time.Minute-time.Second)))
	assert.Equal(t, "3 hours ago", formatRelativeTime(now.Add(-3*time.Hour-time.Second)))
	assert.Equal(t, "2 days ago", formatRelativeTime(now.Add(-49*time.Hour)))

	old := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-01-02", formatRelativeTime(old))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	exists, err := fileExists(filepath.Join(dir, "missing.csv"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = fileExists(dir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFeatureCells(t *testing.T) {
	fw := []model.FeatureWeight{{Term: "conspiracy", Weight: 1.25}}
	assert.Equal(t, "conspiracy\t+1.250", featureCells(fw, 0))
	assert.Equal(t, "\t", featureCells(fw, 1))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Data.Path = filepath.Join(dir, "news.csv")
	cfg.Model.Path = filepath.Join(dir, "models", "model.gz")
	cfg.Database.Path = filepath.Join(dir, "newscheck.db")
	cfg.Training.Samples = 200
	return cfg
}

func TestTrainAndSave(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	articles := dataset.Generate(dataset.GenerateOptions{
		Samples: cfg.Training.Samples,
		Seed:    cfg.Training.Seed,
		Now:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, dataset.WriteCSV(cfg.Data.Path, articles))

	var out bytes.Buffer
	first, err := trainAndSave(ctx, cfg, &out, true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Model saved to")

	loaded, err := detector.Load(cfg.Model.Path)
	require.NoError(t, err)
	assert.Equal(t, first.ID, loaded.ID)

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	run, err := store.GetTrainingRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.Path, run.DataPath)
	assert.InDelta(t, first.Metrics.Accuracy, run.Metrics.Accuracy, 1e-9)

	// Retraining keeps the previous model as an automatic checkpoint.
	out.Reset()
	_, err = trainAndSave(ctx, cfg, &out, true)
	require.NoError(t, err)

	manager, err := checkpoint.NewManager(cfg.Model.Path)
	require.NoError(t, err)
	infos, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].IsAuto)
	assert.Equal(t, first.ID, infos[0].ModelID)
}

func TestTrainAndSave_MissingData(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	_, err := trainAndSave(context.Background(), cfg, &out, false)
	assert.Error(t, err)
}
