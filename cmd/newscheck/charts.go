package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/visualize"
)

func chartsCmd() *cobra.Command {
	var (
		outDir string
		only   []string
	)

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render evaluation charts as PNG files",
		Example: `  newscheck charts --out charts
  newscheck charts --only roc_curve,confusion_matrix`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range only {
				if !slices.Contains(visualize.Names, name) {
					return fmt.Errorf("%w: %q (available: %v)", visualize.ErrUnknownChart, name, visualize.Names)
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, err := loadModel(cfg)
			if err != nil {
				return err
			}
			in, err := visualize.InputFromModel(m)
			if err != nil {
				return err
			}

			charts, err := visualize.RenderAll(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to render charts: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for _, name := range visualize.Names {
				if len(only) > 0 && !slices.Contains(only, name) {
					continue
				}
				path := filepath.Join(outDir, name+".png")
				if err := os.WriteFile(path, charts[name], 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(cli.ChartIcon+" "+path))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "charts", "Directory to write PNG files to")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Render only these charts")

	return cmd
}
