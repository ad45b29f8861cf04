package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/model"
)

func metricsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show the trained model's held-out performance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, err := loadModel(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.RenderModelReport(m))

			if top <= 0 {
				return nil
			}
			fakeTerms, realTerms, err := m.TopFeatures(top)
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("FAKE TERM"), cli.TableHeaderStyle.Render("WEIGHT"),
				cli.TableHeaderStyle.Render("REAL TERM"), cli.TableHeaderStyle.Render("WEIGHT"))
			for i := 0; i < max(len(fakeTerms), len(realTerms)); i++ {
				fmt.Fprintf(w, "%s\t%s\n", featureCells(fakeTerms, i), featureCells(realTerms, i))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&top, "features", 10, "Show this many top terms per label (0 to hide)")

	return cmd
}

func featureCells(fw []model.FeatureWeight, i int) string {
	if i >= len(fw) {
		return "\t"
	}
	return fmt.Sprintf("%s\t%+.3f", fw[i].Term, fw[i].Weight)
}

