package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/dataset"
)

func setupCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare data, database and model in one step",
		Long: `Generate the synthetic dataset if none exists, migrate the history database
and train a model if none is saved yet. With --force the model is retrained
even when one exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, cli.FormatTitle("Setting up newscheck"))

			if exists, err := fileExists(cfg.Data.Path); err != nil {
				return err
			} else if exists {
				fmt.Fprintln(out, cli.FormatInfo("Using existing dataset "+cfg.Data.Path))
			} else {
				articles := dataset.Generate(dataset.GenerateOptions{
					Samples: cfg.Training.Samples,
					Seed:    cfg.Training.Seed,
					Now:     time.Now(),
				})
				if err := dataset.WriteCSV(cfg.Data.Path, articles); err != nil {
					return fmt.Errorf("failed to write dataset: %w", err)
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Generated %d articles in %s", len(articles), cfg.Data.Path)))
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			_ = store.Close()
			fmt.Fprintln(out, cli.FormatSuccess("History database ready at "+cfg.Database.Path))

			exists, err := fileExists(cfg.Model.Path)
			if err != nil {
				return err
			}
			if exists && !force {
				fmt.Fprintln(out, cli.FormatInfo("Model already trained at "+cfg.Model.Path+" (use --force to retrain)"))
				return nil
			}

			_, err = trainAndSave(ctx, cfg, out, exists)
			return err
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Retrain even if a model exists")

	return cmd
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check %s: %w", path, err)
}
