// Package cmd defines the CLI commands for the youpredict executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/youpredict/you-predict-core/internal/app"
	"github.com/youpredict/you-predict-core/internal/config"
)

var cfgFile string

type appKeyType struct{}

// newApp is the application factory, a variable so tests can swap in a
// stub.
var newApp = func(ctx context.Context, cfg config.Config) (*app.App, error) {
	return app.New(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "youpredict",
		Short: "Video telemetry ingestion for the YouPredict project.",
		Long: `youpredict ingests publish notifications for tracked channels,
fans each new video out into a fixed polling schedule, and lands the
resulting snapshots, comments and transcripts in the analytics
warehouse.`,

		// Builds the app after flags are parsed so every subcommand can
		// pull it from the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			appInstance, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKeyType{}, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKeyType{}).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment variables apply on top)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newBootstrapCmd())
	cmd.AddCommand(newSeedChannelsCmd())
	cmd.AddCommand(newSubscribeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKeyType{}).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
