package summarizer

import (
	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/llm"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
)

type implSummarizer struct {
	cfg     config.SummarizerConfig
	client  llm.Client
	metrics *metrics.Collector
	logger  logger.Logger
}

// New creates a Summarizer backed by client. m may be nil.
func New(cfg config.SummarizerConfig, client llm.Client, m *metrics.Collector, log logger.Logger) Summarizer {
	if cfg.ChunkWords <= 0 {
		cfg.ChunkWords = 4000
	}
	if cfg.ChunkChars <= 0 {
		cfg.ChunkChars = 12000
	}
	if cfg.SinglePassChars <= 0 {
		cfg.SinglePassChars = 13000
	}
	if cfg.MeetingWordLimit <= 0 {
		cfg.MeetingWordLimit = 400
	}
	return &implSummarizer{
		cfg:     cfg,
		client:  client,
		metrics: m,
		logger:  log,
	}
}
