package jobstore

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

var (
	// ErrNotFound is returned for an ID that was never created.
	ErrNotFound = errors.New("job not found")
	// ErrInvalidTransition is returned when an update would move a job
	// backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Store is the registry of job ID to job state. All operations on one ID
// are linearizable; different IDs do not contend.
type Store interface {
	// Create registers a new PENDING job under a fresh ID.
	Create(ctx context.Context) (models.Job, error)
	Get(ctx context.Context, id string) (models.Job, error)
	// Update replaces the stored job with job. A status change must follow
	// models.JobStatus.CanTransition; a terminal job cannot be updated.
	Update(ctx context.Context, job models.Job) error
}

// checkUpdate validates replacing current with next.
func checkUpdate(current, next models.Job) error {
	if current.Status.IsTerminal() {
		return ErrInvalidTransition
	}
	if current.Status != next.Status && !current.Status.CanTransition(next.Status) {
		return ErrInvalidTransition
	}
	return nil
}
