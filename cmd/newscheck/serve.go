package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/newscheck/internal/api"
	"github.com/Veraticus/newscheck/internal/certs"
	"github.com/Veraticus/newscheck/internal/detector"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP prediction API",
		Long: `Serve predictions, metrics and charts over HTTP. When no trained model is
available the server still starts; prediction endpoints answer 503 until a
model is trained and the server restarted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var m *detector.Model
			if loaded, err := loadModel(cfg); err != nil {
				slog.Warn("Starting without a model", "path", cfg.Model.Path, "error", err)
			} else {
				m = loaded
				slog.Info("Model loaded", "id", m.ID, "accuracy", m.Metrics.Accuracy)
			}

			deps := newChecker(ctx, cfg, m)
			defer deps.Close()

			var tlsCfg *tls.Config
			if cfg.Server.TLS {
				store := certs.NewStore(cfg.Server.CertDir)
				if tlsCfg, err = store.TLSConfig(); err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				slog.Info("Serving HTTPS with a self-signed certificate", "cert", store.CertFile())
			}

			server, err := api.New(api.Deps{
				Checker: deps.checker,
				Logger:  slog.Default(),
				TLS:     tlsCfg,
				Config:  cfg.Server,
			})
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.ListenAndServe(ctx)
			})
			g.Go(func() error {
				server.WarmCharts(ctx)
				return nil
			})
			return g.Wait()
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8000)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}
