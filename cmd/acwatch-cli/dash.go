package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/joshp123/acwatch/internal/dash"
	"github.com/joshp123/acwatch/internal/refresh"
	"github.com/joshp123/acwatch/internal/store"
	"github.com/joshp123/acwatch/internal/unitsapi"
)

func newDashCmd(flags *globalFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Run the live terminal dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, closeLog, err := dashLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			client, err := unitsapi.NewClient(flags.url)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			unitStore := store.New()
			controller, err := refresh.NewController(logger, refresh.Config{
				Clock:    clockwork.NewRealClock(),
				Fetcher:  client,
				Store:    unitStore,
				Name:     "dash",
				Interval: refresh.DefaultInterval,
			})
			if err != nil {
				return err
			}

			// Mount: start polling before the first frame; unmount: stop on exit.
			if err := controller.Start(ctx); err != nil {
				return err
			}
			defer controller.Stop()

			return dash.New(unitStore, flags.url).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write debug logs to this file (default: discard)")
	return cmd
}

// The dashboard owns the terminal, so logs go to a file or nowhere.
func dashLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { _ = f.Close() }, nil
}
