package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/dataset"
)

func generateCmd() *cobra.Command {
	var (
		samples int
		seed    uint64
		output  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic labelled news dataset",
		Long: `Write a balanced CSV of synthetic fake and real articles with the columns
title, content, source, date and label. Useful for trying the pipeline
without a real dataset.`,
		Example: `  # Write 1000 articles to the configured data path (setup writes training.samples)
  newscheck generate

  # Write a smaller corpus elsewhere
  newscheck generate --samples 200 --output /tmp/news.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Data.Path
			}

			articles := dataset.Generate(dataset.GenerateOptions{
				Samples: samples,
				Seed:    seed,
				Now:     time.Now(),
			})
			if err := dataset.WriteCSV(output, articles); err != nil {
				return fmt.Errorf("failed to write dataset: %w", err)
			}

			slog.Debug("Dataset generated", "path", output, "articles", len(articles))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Generated %d articles (%d fake, %d real) in %s", len(articles), len(articles)/2, len(articles)/2, output)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", dataset.DefaultSamples, "Number of articles to generate")
	cmd.Flags().Uint64Var(&seed, "seed", dataset.DefaultSeed, "Random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path (default: configured data path)")

	return cmd
}
