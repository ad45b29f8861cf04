// Package service defines the interfaces for all application services and the
// prediction workflow shared by the API, the CLI and the terminal checker.
package service

import (
	"context"

	"github.com/Veraticus/newscheck/internal/model"
	"github.com/Veraticus/newscheck/internal/scraper"
)

// PredictionStore persists predictions for history and summaries.
type PredictionStore interface {
	SavePrediction(ctx context.Context, rec *model.PredictionRecord) error
	RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error)
	PredictionSummary(ctx context.Context, modelID string) (model.PredictionSummary, error)
}

// RunStore persists training run summaries.
type RunStore interface {
	SaveTrainingRun(ctx context.Context, run *model.TrainingRun) error
	ListTrainingRuns(ctx context.Context, limit int) ([]model.TrainingRun, error)
	GetTrainingRun(ctx context.Context, id string) (*model.TrainingRun, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	PredictionStore
	RunStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// ArticleFetcher extracts readable article text from a URL.
type ArticleFetcher interface {
	Scrape(ctx context.Context, url string) (*scraper.Article, error)
}
