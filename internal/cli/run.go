package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/spendlog/internal/bot"
	"github.com/roach88/spendlog/internal/config"
	"github.com/roach88/spendlog/internal/menu"
	"github.com/roach88/spendlog/internal/outbox"
	"github.com/roach88/spendlog/internal/retry"
	"github.com/roach88/spendlog/internal/sink"
	"github.com/roach88/spendlog/internal/store"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long: `Start the Telegram bot with the background sync worker.

The bot records expenses in a local SQLite database (creating it if it
doesn't exist) and a worker pushes unsynced rows to the configured
Google Sheet after every confirmed write.

Example:
  spendlog run --config ./config.yaml
  spendlog run -c /etc/spendlog/config.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(rootOpts, cmd)
		},
	}

	return cmd
}

func runBot(opts *RootOptions, cmd *cobra.Command) error {
	slog.Info("loading config", "path", opts.Config)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	slog.Info("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready")

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sheet, err := sink.NewSheets(ctx, cfg.ServiceAccountKey, cfg.Spreadsheet.ID, cfg.Spreadsheet.SheetName)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create sheets client", err)
	}

	cache := menu.NewCache()
	janitor := menu.NewJanitor(cache, cfg.Menu.TTL.Std(), cfg.Menu.SweepInterval.Std())

	worker := outbox.NewWorker(st, sheet, retry.Policy{
		MaxAttempts: cfg.Sync.MaxAttempts,
		BaseDelay:   cfg.Sync.BaseDelay.Std(),
	})

	tg, err := bot.New(bot.Options{
		Token:      cfg.BotToken,
		Store:      st,
		Cache:      cache,
		Outbox:     worker,
		Categories: cfg.Categories,
		Currency:   cfg.Currency,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create bot", err)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		janitor.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if runErr := worker.Run(ctx); runErr != nil && !errors.Is(runErr, context.Canceled) {
			slog.Error("sync worker stopped", "error", runErr)
		}
	}()

	// Catch up on anything left unsynced by a previous run.
	worker.Notify()

	slog.Info("bot starting", "db", cfg.Database, "sheet", cfg.Spreadsheet.SheetName)
	fmt.Fprintln(cmd.OutOrStdout(), "Bot started. Press Ctrl-C to stop.")

	err = tg.Run(ctx)
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "bot error", err)
	}

	slog.Info("stopped gracefully")
	return nil
}
