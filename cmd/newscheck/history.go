package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
)

func historyCmd() *cobra.Command {
	var (
		limit       int
		predictions bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past training runs and predictions",
		Example: `  newscheck history
  newscheck history --predictions --limit 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if predictions {
				summary, err := store.PredictionSummary(ctx, "")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatTitle("Predictions"))
				fmt.Fprintf(out, "Total: %d  Fake: %d  Real: %d  Avg confidence: %.1f%%\n\n",
					summary.Total, summary.Fake, summary.Real, summary.AverageConfidence*100)

				records, err := store.RecentPredictions(ctx, limit)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(out, cli.SubtitleStyle.Render("No predictions recorded yet."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("WHEN"),
					cli.TableHeaderStyle.Render("VERDICT"),
					cli.TableHeaderStyle.Render("CONFIDENCE"),
					cli.TableHeaderStyle.Render("CHANNEL"),
					cli.TableHeaderStyle.Render("TEXT"),
				}, "\t"))
				for _, rec := range records {
					verdict := cli.RealVerdictStyle.Render("REAL")
					if rec.IsFake {
						verdict = cli.FakeVerdictStyle.Render("FAKE")
					}
					fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%s\t%s\n",
						formatRelativeTime(rec.CreatedAt), verdict, rec.Confidence*100, rec.Channel, rec.Excerpt)
				}
				return w.Flush()
			}

			runs, err := store.ListTrainingRuns(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatTitle("Training runs"))
			if len(runs) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No training runs recorded yet."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("MODEL"),
				cli.TableHeaderStyle.Render("TRAINED"),
				cli.TableHeaderStyle.Render("ACCURACY"),
				cli.TableHeaderStyle.Render("F1"),
				cli.TableHeaderStyle.Render("BASELINE"),
				cli.TableHeaderStyle.Render("DURATION"),
			}, "\t"))
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t%.3f\t%.1f%%\t%s\n",
					cli.InfoStyle.Render(run.ID),
					formatRelativeTime(run.CreatedAt),
					run.Metrics.Accuracy*100,
					run.Metrics.F1,
					run.BaselineAccuracy*100,
					run.Duration.Round(time.Millisecond),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum rows to show")
	cmd.Flags().BoolVar(&predictions, "predictions", false, "Show recent predictions instead of training runs")

	return cmd
}
