// Command seed loads notifications from a YAML file into the configured
// store. It is the only write path for the notification feed.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hongminglow/moneyhive-bank/internal/config"
	"github.com/hongminglow/moneyhive-bank/internal/logging"
	"github.com/hongminglow/moneyhive-bank/internal/seed"
	"github.com/hongminglow/moneyhive-bank/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Insert notifications from a YAML file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			log.Logger = logger

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			notes, err := seed.Parse(f)
			if err != nil {
				return err
			}
			if dryRun {
				for _, n := range notes {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s (Date: %s)\n", n.Message, n.Timestamp.Format(time.RFC3339))
				}
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			store, err := server.OpenStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close(context.Background())

			if err := store.InsertNotifications(ctx, notes); err != nil {
				return err
			}
			logger.Info().Int("count", len(notes)).Str("driver", cfg.Driver).Msg("notifications seeded")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with notifications")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
