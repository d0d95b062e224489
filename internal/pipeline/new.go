package pipeline

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/media"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/transcript"
)

// Deps are the collaborators a pipeline run needs. Usage and Metrics may be nil.
type Deps struct {
	Store      jobstore.Store
	Stager     media.Stager
	Fetcher    transcript.Fetcher
	Summarizer summarizer.Summarizer
	Usage      StatusSink
	Metrics    *metrics.Collector
	Logger     logger.Logger
}

const (
	storeWriteAttempts = 4
	storeWriteBackoff  = 250 * time.Millisecond
	storeWriteTimeout  = 5 * time.Second
)

type implOrchestrator struct {
	Deps
	limiter       *limiter
	wg            sync.WaitGroup
	now           func() time.Time
	writeAttempts int
	writeBackoff  time.Duration
}

// New creates an Orchestrator running at most maxConcurrent jobs at once.
func New(deps Deps, maxConcurrent int) Orchestrator {
	return &implOrchestrator{
		Deps:    deps,
		limiter: newLimiter(maxConcurrent),
		now:     func() time.Time { return time.Now().UTC() },

		writeAttempts: storeWriteAttempts,
		writeBackoff:  storeWriteBackoff,
	}
}
