package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/llm"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/media"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/pipeline"
	"github.com/nguyentantai21042004/digest-flow/internal/storage"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
	"github.com/nguyentantai21042004/digest-flow/internal/usage"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
	"github.com/nguyentantai21042004/digest-flow/pkg/redisclient"
)

// app holds the wired components shared by serve and watch.
type app struct {
	cfg        *config.Config
	logger     logger.Logger
	metrics    *metrics.Collector
	store      jobstore.Store
	usage      usage.Tracker
	summarizer summarizer.Summarizer
	pipeline   pipeline.Orchestrator
	closers    []func() error
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

// newSummarizer wires only the language-model side.
func newSummarizer(cfg *config.Config, m *metrics.Collector, log logger.Logger) (summarizer.Summarizer, error) {
	client, err := llm.New(cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return summarizer.New(cfg.Summarizer, client, m, log), nil
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewCollector()
	}

	sum, err := newSummarizer(cfg, a.metrics, log)
	if err != nil {
		return nil, err
	}
	a.summarizer = sum

	objects, closeStore, err := storage.NewGCS(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	var rdb *redis.Client
	if cfg.Jobs.Backend == config.BackendRedis || cfg.Usage.Backend == config.BackendRedis {
		rdb = redisclient.New(cfg.Redis)
		a.closers = append(a.closers, rdb.Close)
		if err := redisclient.Ping(ctx, rdb); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		log.Info(ctx, "Connected to redis at %s", cfg.Redis.Addr)
	}

	if cfg.Jobs.Backend == config.BackendRedis {
		a.store = jobstore.NewRedis(rdb, cfg.Jobs.TTL)
	} else {
		a.store = jobstore.NewMemory()
	}
	if cfg.Usage.Backend == config.BackendRedis {
		a.usage = usage.NewRedis(rdb)
	} else {
		a.usage = usage.NewMemory()
	}

	stager := media.New(cfg, objects, executor.New(), log)
	fetcher := transcript.New(cfg.Transcription, cfg.Storage.SignedURLTTL, objects, &http.Client{}, log)

	a.pipeline = pipeline.New(pipeline.Deps{
		Store:      a.store,
		Stager:     stager,
		Fetcher:    fetcher,
		Summarizer: a.summarizer,
		Usage:      a.usage,
		Metrics:    a.metrics,
		Logger:     log,
	}, cfg.Jobs.MaxConcurrent)

	return a, nil
}

// Close releases external clients in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(context.Background(), "Close failed: %v", err)
		}
	}
	a.closers = nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Temp} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
