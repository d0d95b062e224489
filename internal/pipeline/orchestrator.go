package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/metrics"
	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

func (o *implOrchestrator) Dispatch(ctx context.Context, req Request) error {
	if !o.limiter.claim(req.JobID) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, req.JobID)
	}

	// the worker outlives the request that dispatched it
	ctx = logger.WithJobID(context.WithoutCancel(ctx), req.JobID)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.limiter.unclaim(req.JobID)

		if err := o.limiter.acquire(ctx); err != nil {
			o.removeInput(ctx, req.InputPath)
			o.Logger.Error(ctx, "Could not acquire pipeline slot: %v", err)
			return
		}
		defer o.limiter.release()

		if _, err := o.run(ctx, req); err != nil {
			o.Logger.Error(ctx, "Pipeline run aborted: %v", err)
		}
	}()
	return nil
}

func (o *implOrchestrator) Run(ctx context.Context, req Request) (models.Job, error) {
	if !o.limiter.claim(req.JobID) {
		o.removeInput(ctx, req.InputPath)
		return models.Job{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, req.JobID)
	}
	defer o.limiter.unclaim(req.JobID)

	ctx = logger.WithJobID(ctx, req.JobID)
	if err := o.limiter.acquire(ctx); err != nil {
		o.removeInput(ctx, req.InputPath)
		return models.Job{}, err
	}
	defer o.limiter.release()

	return o.run(ctx, req)
}

func (o *implOrchestrator) Wait() {
	o.wg.Wait()
}

// run moves the job to IN_PROGRESS, executes the stages in order and
// finalizes exactly once. The returned error is only set when the job
// could not be started or finalized; stage failures end up in the record.
func (o *implOrchestrator) run(ctx context.Context, req Request) (job models.Job, err error) {
	staged := false
	defer func() {
		if !staged {
			o.removeInput(ctx, req.InputPath)
		}
	}()

	job, err = o.Store.Get(ctx, req.JobID)
	if err != nil {
		return models.Job{}, fmt.Errorf("load job: %w", err)
	}

	started := o.now()
	job.Status = models.JobStatusInProgress
	job.StartedAt = &started
	if err := o.persist(ctx, job); err != nil {
		o.abandon(ctx, job, err)
		return models.Job{}, fmt.Errorf("start job: %w", err)
	}
	o.Metrics.RecordStarted()

	o.Logger.Info(ctx, "========================================")
	o.Logger.Info(ctx, "Starting meeting pipeline: %s", req.InputName)
	o.Logger.Info(ctx, "========================================")

	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error(ctx, "Pipeline panicked: %v", r)
			job, err = o.finalize(ctx, req, job, "", fmt.Errorf("internal error: %v", r))
		}
	}()

	summary, stageErr := o.stages(ctx, req, &staged)
	return o.finalize(ctx, req, job, summary, stageErr)
}

func (o *implOrchestrator) stages(ctx context.Context, req Request, staged *bool) (string, error) {
	var objectName string
	err := o.timed(ctx, metrics.StageStage, func() error {
		*staged = true
		var err error
		objectName, err = o.Stager.Stage(ctx, req.InputPath, req.InputName)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("stage: %w", err)
	}

	var payload []byte
	err = o.timed(ctx, metrics.StageTranscribe, func() error {
		var err error
		payload, err = o.Fetcher.Fetch(ctx, objectName)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	var summary string
	err = o.timed(ctx, metrics.StageSummarize, func() error {
		var err error
		summary, err = o.Summarizer.SummarizeTranscript(ctx, payload)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}

func (o *implOrchestrator) timed(ctx context.Context, stage string, fn func() error) error {
	start := time.Now()
	o.Logger.Info(ctx, "Stage %s started", stage)
	err := fn()
	d := time.Since(start)
	o.Metrics.ObserveStage(stage, d, err)
	if err != nil {
		o.Logger.Warn(ctx, "Stage %s failed after %s: %v", stage, d.Round(time.Millisecond), err)
		return err
	}
	o.Logger.Info(ctx, "Stage %s finished in %s", stage, d.Round(time.Millisecond))
	return nil
}

// finalize records the terminal state, then fires the best-effort side channels.
func (o *implOrchestrator) finalize(ctx context.Context, req Request, job models.Job, summary string, stageErr error) (models.Job, error) {
	completed := o.now()
	job.CompletedAt = &completed
	if stageErr != nil {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = stageErr.Error()
		job.SummaryText = ""
	} else {
		job.Status = models.JobStatusCompleted
		job.SummaryText = summary
		job.ErrorMessage = ""
	}

	if err := o.persist(ctx, job); err != nil {
		o.Logger.Error(ctx, "Could not record terminal state %s: %v", job.Status, err)

		failed := job
		failed.Status = models.JobStatusFailed
		failed.SummaryText = ""
		failed.ErrorMessage = "record result: " + err.Error()
		if ferr := o.writeOnce(ctx, failed); ferr != nil {
			o.Metrics.RecordFailed()
			return job, fmt.Errorf("finalize job: %w", err)
		}
		job = failed
		stageErr = err
	}

	if stageErr != nil {
		o.Metrics.RecordFailed()
		o.Logger.Error(ctx, "Job failed: %s", job.ErrorMessage)
	} else {
		o.Metrics.RecordCompleted()
		o.Logger.Info(ctx, "Job completed in %s", completed.Sub(*job.StartedAt).Round(time.Millisecond))
	}

	o.signalUsage(ctx, req.ClientKey, job.Status)
	o.notify(ctx, req.OnFinish, job)
	return job, nil
}

// persist writes job with bounded retries. Each attempt gets its own
// timeout detached from ctx. A rejected transition or a missing job is
// final and not retried.
func (o *implOrchestrator) persist(ctx context.Context, job models.Job) error {
	var err error
	for attempt := 1; attempt <= o.writeAttempts; attempt++ {
		if err = o.writeOnce(ctx, job); err == nil {
			return nil
		}
		if errors.Is(err, jobstore.ErrInvalidTransition) || errors.Is(err, jobstore.ErrNotFound) {
			return o.reconcile(ctx, job, err)
		}
		o.Logger.Warn(ctx, "Writing %s failed (attempt %d/%d): %v", job.Status, attempt, o.writeAttempts, err)
		if attempt < o.writeAttempts {
			time.Sleep(o.writeBackoff * time.Duration(attempt))
		}
	}
	return err
}

func (o *implOrchestrator) writeOnce(ctx context.Context, job models.Job) error {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeWriteTimeout)
	defer cancel()
	return o.Store.Update(wctx, job)
}

// reconcile covers a write that landed although an earlier attempt
// reported failure: the record already holds the wanted status.
func (o *implOrchestrator) reconcile(ctx context.Context, job models.Job, err error) error {
	if !errors.Is(err, jobstore.ErrInvalidTransition) {
		return err
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeWriteTimeout)
	defer cancel()
	stored, gerr := o.Store.Get(wctx, job.ID)
	if gerr == nil && stored.Status == job.Status && stored.StartedAt != nil && job.StartedAt != nil && stored.StartedAt.Equal(*job.StartedAt) {
		return nil
	}
	return err
}

// abandon moves a job that could not be started to FAILED.
func (o *implOrchestrator) abandon(ctx context.Context, job models.Job, cause error) {
	if errors.Is(cause, jobstore.ErrInvalidTransition) || errors.Is(cause, jobstore.ErrNotFound) {
		return
	}
	completed := o.now()
	job.Status = models.JobStatusFailed
	job.ErrorMessage = "start job: " + cause.Error()
	job.CompletedAt = &completed
	if err := o.writeOnce(ctx, job); err != nil {
		o.Logger.Error(ctx, "Could not mark unstarted job failed: %v", err)
	}
}

func (o *implOrchestrator) notify(ctx context.Context, fn func(context.Context, models.Job), job models.Job) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Warn(ctx, "Finish hook panicked: %v", r)
		}
	}()
	fn(ctx, job)
}

func (o *implOrchestrator) signalUsage(ctx context.Context, clientKey string, status models.JobStatus) {
	if o.Usage == nil || clientKey == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Warn(ctx, "Usage signal panicked: %v", r)
		}
	}()
	if err := o.Usage.SetJobStatus(ctx, clientKey, status); err != nil {
		o.Logger.Warn(ctx, "Usage signal failed for %s: %v", clientKey, err)
	}
}

func (o *implOrchestrator) removeInput(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		o.Logger.Warn(ctx, "Failed to remove input %s: %v", path, err)
	}
}
