package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/checkpoint"
	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/common"
	"github.com/Veraticus/newscheck/internal/config"
	"github.com/Veraticus/newscheck/internal/detector"
	"github.com/Veraticus/newscheck/internal/model"
)

func trainCmd() *cobra.Command {
	var noCheckpoint bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model on the labelled dataset",
		Long: `Load the training CSV, split it 80/20 with a fixed seed, fit the TF-IDF
vectorizer and logistic regression on the training part and evaluate on the
held-out part. The previous model is checkpointed before it is replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, err = trainAndSave(cmd.Context(), cfg, cmd.OutOrStdout(), !noCheckpoint)
			return err
		},
	}

	cmd.Flags().BoolVar(&noCheckpoint, "no-checkpoint", false, "Do not checkpoint the previous model")

	return cmd
}

// trainAndSave trains from cfg.Data.Path, saves the artifact and records the
// run. Checkpoint and history failures are logged, not returned.
func trainAndSave(ctx context.Context, cfg config.Config, out io.Writer, autoCheckpoint bool) (*detector.Model, error) {
	fmt.Fprintln(out, cli.FormatTitle("Training fake news detector"))

	progress := cli.NewTrainingProgress(out, cfg.Training.MaxIter)
	trainer := detector.NewTrainer(detector.Options{
		Recorder:      progress,
		OnStage:       progress.Stage,
		TestSize:      cfg.Training.TestSize,
		C:             cfg.Training.C,
		Seed:          cfg.Training.Seed,
		MaxFeatures:   cfg.Training.MaxFeatures,
		MaxIterations: cfg.Training.MaxIter,
	})

	start := time.Now()
	m, err := trainer.Train(ctx, cfg.Data.Path)
	progress.Done()
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Training on %s failed", cfg.Data.Path), err)
	}
	duration := time.Since(start)

	if autoCheckpoint {
		checkpointPrevious(ctx, cfg, out)
	}

	if err := detector.Save(cfg.Model.Path, m); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	recordRun(ctx, cfg, m, duration)

	fmt.Fprintln(out, cli.RenderModelReport(m))
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Model saved to %s (%s)", cfg.Model.Path, duration.Round(time.Millisecond))))
	return m, nil
}

func checkpointPrevious(ctx context.Context, cfg config.Config, out io.Writer) {
	manager, err := checkpoint.NewManager(cfg.Model.Path)
	if err != nil {
		slog.Warn("Failed to create checkpoint manager", "error", err)
		return
	}
	info, err := manager.AutoCheckpoint(ctx, "train")
	if err != nil {
		slog.Warn("Failed to checkpoint previous model", "error", err)
		return
	}
	if info != nil {
		fmt.Fprintln(out, cli.FormatInfo("Previous model saved as checkpoint "+info.ID))
	}
}

func recordRun(ctx context.Context, cfg config.Config, m *detector.Model, duration time.Duration) {
	store, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Warn("Training history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	run := &model.TrainingRun{
		ID:               m.ID,
		CreatedAt:        m.CreatedAt,
		DataPath:         cfg.Data.Path,
		ArtifactPath:     cfg.Model.Path,
		Metrics:          m.Metrics,
		BaselineAccuracy: m.Baseline.Accuracy,
		Duration:         duration,
	}
	if err := store.SaveTrainingRun(ctx, run); err != nil {
		slog.Warn("Failed to record training run", "error", err)
	}
}
