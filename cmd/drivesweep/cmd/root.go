// Package cmd implements the drivesweep command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/drivesweep/drivesweep/internal/config"
	"github.com/drivesweep/drivesweep/internal/logging"
	"github.com/drivesweep/drivesweep/internal/metrics"
	"github.com/drivesweep/drivesweep/internal/remote"

	// Registered storage providers.
	_ "github.com/drivesweep/drivesweep/internal/remote/googledrive"
	_ "github.com/drivesweep/drivesweep/internal/remote/s3"
)

var (
	cfg *config.Config

	flagProvider    string
	flagConcurrency int
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "drivesweep",
	Short: "Enumerate and clean up shared cloud drive folders",
	Long: `drivesweep walks a remote folder tree, spots promotional junk and
naming tags, and applies bulk rename/delete or copy batches with full
per-item logs.

Configuration comes from environment variables (DRIVESWEEP_*, DRIVE_*,
S3_*); the flags below override the environment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagProvider != "" {
			cfg.Provider = flagProvider
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Concurrency = flagConcurrency
		}
		if flagLogLevel != "" {
			cfg.LogLevel = flagLogLevel
		}

		if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		if cfg.MetricsAddr != "" {
			go func() {
				if err := metrics.Serve(cfg.MetricsAddr); err != nil {
					logging.Error("metrics listener failed", zap.Error(err))
				}
			}()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "",
		"storage provider (googledrive, s3)")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 4,
		"concurrent remote calls")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		"log level (debug, info, warn, error)")
}

func newClient(ctx context.Context) (remote.Client, error) {
	return remote.NewClient(ctx, cfg)
}
