package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/digest-flow/internal/watcher"
)

func buildWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Summarize recordings dropped into the input folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context())
		},
	}
}

func runWatch(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	intake := watcher.NewIntake(a.store, a.pipeline, cfg.Paths.Temp, cfg.Paths.Output, log)
	w, err := watcher.New(cfg.Paths.Input, intake.Handle, log)
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "Press Ctrl+C to stop")

	err = w.Start(ctx)

	log.Info(context.Background(), "Waiting for in-flight jobs...")
	a.pipeline.Wait()
	log.Info(context.Background(), "Watcher stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
