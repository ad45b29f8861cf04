package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/newscheck/internal/model"
)

// SaveTrainingRun records a completed training run.
func (s *SQLiteStorage) SaveTrainingRun(ctx context.Context, run *model.TrainingRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTrainingRun(run); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_runs (
			id, created_at, data_path, artifact_path,
			accuracy, precision, recall, f1, auc,
			training_samples, test_samples, duration_ms, baseline_accuracy
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC(), run.DataPath, run.ArtifactPath,
		run.Metrics.Accuracy, run.Metrics.Precision, run.Metrics.Recall, run.Metrics.F1, run.Metrics.AUC,
		run.Metrics.TrainingSamples, run.Metrics.TestSamples, run.Duration.Milliseconds(), run.BaselineAccuracy,
	)
	if err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}
	return nil
}

// ListTrainingRuns returns the most recent runs, newest first. A non-positive
// limit returns every run.
func (s *SQLiteStorage) ListTrainingRuns(ctx context.Context, limit int) ([]model.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, data_path, artifact_path,
			accuracy, precision, recall, f1, auc,
			training_samples, test_samples, duration_ms, baseline_accuracy
		FROM training_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []model.TrainingRun
	for rows.Next() {
		run, err := scanTrainingRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training runs: %w", err)
	}
	return runs, nil
}

// GetTrainingRun fetches one run by ID.
func (s *SQLiteStorage) GetTrainingRun(ctx context.Context, id string) (*model.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, data_path, artifact_path,
			accuracy, precision, recall, f1, auc,
			training_samples, test_samples, duration_ms, baseline_accuracy
		FROM training_runs
		WHERE id = ?`, id)

	run, err := scanTrainingRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrainingRun(row rowScanner) (model.TrainingRun, error) {
	var (
		run        model.TrainingRun
		durationMS int64
	)
	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.DataPath, &run.ArtifactPath,
		&run.Metrics.Accuracy, &run.Metrics.Precision, &run.Metrics.Recall, &run.Metrics.F1, &run.Metrics.AUC,
		&run.Metrics.TrainingSamples, &run.Metrics.TestSamples, &durationMS, &run.BaselineAccuracy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan training run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
