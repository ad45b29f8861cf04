package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/newscheck/internal/model"
)

// SavePrediction appends a prediction to the history and sets rec.ID.
func (s *SQLiteStorage) SavePrediction(ctx context.Context, rec *model.PredictionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrediction(rec); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			model_id, text_hash, excerpt, is_fake, probability_fake, confidence, channel, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ModelID, rec.TextHash, rec.Excerpt, rec.IsFake, rec.ProbabilityFake, rec.Confidence,
		string(rec.Channel), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get prediction ID: %w", err)
	}
	rec.ID = id
	return nil
}

// RecentPredictions returns up to limit predictions, newest first.
func (s *SQLiteStorage) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_id, text_hash, excerpt, is_fake, probability_fake, confidence, channel, created_at
		FROM predictions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []model.PredictionRecord
	for rows.Next() {
		var (
			rec     model.PredictionRecord
			channel string
		)
		if err := rows.Scan(&rec.ID, &rec.ModelID, &rec.TextHash, &rec.Excerpt, &rec.IsFake,
			&rec.ProbabilityFake, &rec.Confidence, &channel, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		rec.Channel = model.PredictionChannel(channel)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating predictions: %w", err)
	}
	return records, nil
}

// PredictionSummary aggregates predictions, optionally for a single model.
func (s *SQLiteStorage) PredictionSummary(ctx context.Context, modelID string) (model.PredictionSummary, error) {
	var summary model.PredictionSummary
	if err := validateContext(ctx); err != nil {
		return summary, err
	}

	var (
		fake    sql.NullInt64
		avgConf sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN is_fake THEN 1 ELSE 0 END), AVG(confidence)
		FROM predictions
		WHERE ? = '' OR model_id = ?`, modelID, modelID,
	).Scan(&summary.Total, &fake, &avgConf)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize predictions: %w", err)
	}

	summary.Fake = int(fake.Int64)
	summary.Real = summary.Total - summary.Fake
	summary.AverageConfidence = avgConf.Float64
	return summary, nil
}
