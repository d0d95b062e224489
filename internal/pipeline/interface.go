package pipeline

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// ErrAlreadyRunning is returned when a job already has a live worker.
var ErrAlreadyRunning = errors.New("job is already running")

// Request describes one uploaded video to push through the pipeline.
type Request struct {
	JobID     string
	InputPath string
	InputName string
	// ClientKey identifies the submitter for the usage signal. Empty skips it.
	ClientKey string
	// OnFinish, if set, is called once with the terminal job.
	OnFinish func(ctx context.Context, job models.Job)
}

// Orchestrator drives stage -> transcribe -> summarize for one job and
// records exactly one terminal state.
type Orchestrator interface {
	// Dispatch starts the job in the background and returns immediately.
	Dispatch(ctx context.Context, req Request) error
	// Run executes the job synchronously and returns its terminal record.
	Run(ctx context.Context, req Request) (models.Job, error)
	// Wait blocks until every dispatched job has finished.
	Wait()
}

// StatusSink receives the terminal status of a job, keyed by client.
type StatusSink interface {
	SetJobStatus(ctx context.Context, clientKey string, status models.JobStatus) error
}
