package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/spendlog/internal/config"
	"github.com/roach88/spendlog/internal/outbox"
	"github.com/roach88/spendlog/internal/retry"
	"github.com/roach88/spendlog/internal/sink"
	"github.com/roach88/spendlog/internal/store"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push unsynced rows once and exit",
		Long: `Run a single sync pass without starting the bot.

Reads every ledger row without a sync watermark, appends the batch to
the configured Google Sheet, and marks the pushed rows synced. Useful
after an outage or for cron-style catch-up.

Example:
  spendlog sync --config ./config.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(rootOpts, cmd)
		},
	}

	return cmd
}

func runSync(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sheet, err := sink.NewSheets(ctx, cfg.ServiceAccountKey, cfg.Spreadsheet.ID, cfg.Spreadsheet.SheetName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create sheets client", err)
	}

	worker := outbox.NewWorker(st, sheet, retry.Policy{
		MaxAttempts: cfg.Sync.MaxAttempts,
		BaseDelay:   cfg.Sync.BaseDelay.Std(),
	})
	if err := worker.SyncOnce(ctx); err != nil {
		return WrapExitError(ExitFailure, "sync failed", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Sync complete.")
	return nil
}
