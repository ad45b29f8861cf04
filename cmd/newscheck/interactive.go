package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/newscheck/internal/tui"
)

func interactiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Check news text interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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

			return tui.Run(ctx, deps.checker)
		},
	}
}
