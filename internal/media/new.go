package media

import (
	"github.com/google/uuid"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/storage"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

type implStager struct {
	ffmpeg     config.FFmpegConfig
	tempDir    string
	storageCfg config.StorageConfig
	store      storage.ObjectStore
	executor   executor.Executor
	logger     logger.Logger
	newID      func() string
}

// New creates a Stager that writes intermediates under cfg.Paths.Temp.
func New(cfg *config.Config, store storage.ObjectStore, exec executor.Executor, log logger.Logger) Stager {
	return &implStager{
		ffmpeg:     cfg.FFmpeg,
		tempDir:    cfg.Paths.Temp,
		storageCfg: cfg.Storage,
		store:      store,
		executor:   exec,
		logger:     log,
		newID:      uuid.NewString,
	}
}
