package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/cli"
	"github.com/Veraticus/newscheck/internal/model"
)

func predictCmd() *cobra.Command {
	var (
		url     string
		file    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "predict [text]",
		Short: "Classify a piece of news text as fake or real",
		Long: `Classify text given as arguments, read from a file ("-" for stdin) or
extracted from a web page.`,
		Example: `  newscheck predict "Breaking: Secret government conspiracy exposed"
  newscheck predict --file article.txt
  newscheck predict --url https://example.com/story --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			sources := 0
			for _, set := range []bool{len(args) > 0, file != "", url != ""} {
				if set {
					sources++
				}
			}
			if sources != 1 {
				return errors.New("provide exactly one of: text arguments, --file or --url")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, err := loadModel(cfg)
			if err != nil {
				return err
			}
			deps := newChecker(ctx, cfg, m)
			defer deps.Close()

			var (
				result model.PredictionResult
				title  string
			)
			switch {
			case url != "":
				article, res, err := deps.checker.CheckURL(ctx, url)
				if err != nil {
					return fmt.Errorf("failed to check %s: %w", url, err)
				}
				result, title = res, article.Title
			default:
				text := strings.Join(args, " ")
				if file != "" {
					if text, err = readInput(cmd.InOrStdin(), file); err != nil {
						return err
					}
				}
				if result, err = deps.checker.Check(ctx, text, model.ChannelCLI); err != nil {
					return err
				}
			}

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if title != "" {
				fmt.Fprintln(out, cli.BoldStyle.Render(title))
			}
			fmt.Fprintln(out, cli.FormatPrediction(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Fetch and classify the article at this URL")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the text from a file (- for stdin)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")

	return cmd
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(raw), nil
}
