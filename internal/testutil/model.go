package testutil

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/newscheck/internal/dataset"
	"github.com/Veraticus/newscheck/internal/detector"
)

// Sample texts with a known classification under TrainedModel.
const (
	FakeText = "Breaking: Secret government conspiracy exposed"
	RealText = "Stock market reaches new high as GDP grows"
)

var (
	modelOnce sync.Once
	model     *detector.Model
	modelErr  error
)

// TrainedModel returns a model trained on a generated corpus. It is trained
// once per test binary; models are immutable so sharing is safe.
func TrainedModel(t *testing.T) *detector.Model {
	t.Helper()
	modelOnce.Do(func() {
		articles := dataset.Generate(dataset.GenerateOptions{
			Samples: 400,
			Seed:    1,
			Now:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		model, modelErr = detector.NewTrainer(detector.Options{Seed: dataset.DefaultSeed}).
			TrainArticles(context.Background(), articles)
	})
	if modelErr != nil {
		t.Fatalf("failed to train test model: %v", modelErr)
	}
	return model
}

// SaveModel writes m to a fresh artifact path under t.TempDir.
func SaveModel(t *testing.T, m *detector.Model) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models", "model.gz")
	if err := detector.Save(path, m); err != nil {
		t.Fatalf("failed to save model: %v", err)
	}
	return path
}
