// Package storage persists training history and predictions in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/newscheck/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidRun        = errors.New("invalid training run")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrRunNotFound       = errors.New("training run not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTrainingRun validates a training run before insertion.
func validateTrainingRun(run *model.TrainingRun) error {
	if run == nil {
		return fmt.Errorf("%w: training run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidRun)
	}
	if run.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidRun)
	}
	for name, v := range map[string]float64{
		"accuracy":          run.Metrics.Accuracy,
		"precision":         run.Metrics.Precision,
		"recall":            run.Metrics.Recall,
		"f1":                run.Metrics.F1,
		"auc":               run.Metrics.AUC,
		"baseline accuracy": run.BaselineAccuracy,
	} {
		if !isProbability(v) {
			return fmt.Errorf("%w: %s must be between 0 and 1", ErrInvalidRun, name)
		}
	}
	return nil
}

// validatePrediction validates a prediction record before insertion.
func validatePrediction(rec *model.PredictionRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: prediction", ErrNilParameter)
	}
	if strings.TrimSpace(rec.ModelID) == "" {
		return fmt.Errorf("%w: missing model ID", ErrInvalidPrediction)
	}
	if strings.TrimSpace(rec.TextHash) == "" {
		return fmt.Errorf("%w: missing text hash", ErrInvalidPrediction)
	}

	switch rec.Channel {
	case model.ChannelAPI, model.ChannelBatch, model.ChannelURL, model.ChannelCLI, model.ChannelInteractive:
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidPrediction, rec.Channel)
	}

	if !isProbability(rec.ProbabilityFake) || !isProbability(rec.Confidence) {
		return fmt.Errorf("%w: probabilities must be between 0 and 1", ErrInvalidPrediction)
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
