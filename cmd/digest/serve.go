package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/digest-flow/internal/httpapi"
)

const shutdownTimeout = 10 * time.Second

func buildServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(parent context.Context, addr string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpapi.NewServer(cfg.Server, cfg.Paths.Temp, httpapi.Deps{
		Store:      a.store,
		Pipeline:   a.pipeline,
		Summarizer: a.summarizer,
		Usage:      a.usage,
		Metrics:    a.metrics,
		Logger:     log,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(ctx, "Listening on %s (llm: %s/%s, jobs: %s, max concurrent: %d)",
			cfg.Server.Addr, cfg.LLM.Provider, cfg.LLM.Model, cfg.Jobs.Backend, cfg.Jobs.MaxConcurrent)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info(ctx, "Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// jobs run detached from requests; let in-flight ones reach a terminal state
	a.pipeline.Wait()
	log.Info(context.Background(), "Server stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
