package storage

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Veraticus/newscheck/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTrainingRun(t *testing.T) {
	valid := func() *model.TrainingRun {
		return testRun("run-1", time.Now(), 0.9)
	}

	tests := []struct {
		run     *model.TrainingRun
		wantErr error
		name    string
	}{
		{name: "valid", run: valid()},
		{name: "nil", run: nil, wantErr: ErrNilParameter},
		{name: "missing ID", run: func() *model.TrainingRun { r := valid(); r.ID = " "; return r }(), wantErr: ErrInvalidRun},
		{name: "zero time", run: func() *model.TrainingRun { r := valid(); r.CreatedAt = time.Time{}; return r }(), wantErr: ErrInvalidRun},
		{name: "negative duration", run: func() *model.TrainingRun { r := valid(); r.Duration = -time.Second; return r }(), wantErr: ErrInvalidRun},
		{name: "accuracy above one", run: func() *model.TrainingRun { r := valid(); r.Metrics.Accuracy = 1.5; return r }(), wantErr: ErrInvalidRun},
		{name: "NaN auc", run: func() *model.TrainingRun { r := valid(); r.Metrics.AUC = math.NaN(); return r }(), wantErr: ErrInvalidRun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTrainingRun(tt.run)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateTrainingRun() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTrainingRun() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePrediction(t *testing.T) {
	valid := func() *model.PredictionRecord {
		return &model.PredictionRecord{
			ModelID:         "m1",
			TextHash:        "abc",
			Channel:         model.ChannelAPI,
			ProbabilityFake: 0.2,
			Confidence:      0.8,
		}
	}

	tests := []struct {
		rec     *model.PredictionRecord
		name    string
		wantErr bool
	}{
		{name: "valid", rec: valid()},
		{name: "nil", rec: nil, wantErr: true},
		{name: "missing model", rec: func() *model.PredictionRecord { r := valid(); r.ModelID = ""; return r }(), wantErr: true},
		{name: "missing hash", rec: func() *model.PredictionRecord { r := valid(); r.TextHash = ""; return r }(), wantErr: true},
		{name: "unknown channel", rec: func() *model.PredictionRecord { r := valid(); r.Channel = "email"; return r }(), wantErr: true},
		{name: "negative probability", rec: func() *model.PredictionRecord { r := valid(); r.ProbabilityFake = -0.1; return r }(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePrediction(tt.rec)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePrediction() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
