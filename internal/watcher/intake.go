package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/media"
	"github.com/nguyentantai21042004/digest-flow/internal/models"
	"github.com/nguyentantai21042004/digest-flow/internal/pipeline"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
)

// Exporter writes a finished summary somewhere durable.
type Exporter func(dir, name, summary string) (string, string, error)

// Intake turns dropped files into pipeline jobs.
type Intake struct {
	Store     jobstore.Store
	Pipeline  pipeline.Orchestrator
	TempDir   string
	OutputDir string
	Export    Exporter
	Logger    logger.Logger
}

// NewIntake creates an Intake that exports summaries as markdown and docx.
func NewIntake(store jobstore.Store, orch pipeline.Orchestrator, tempDir, outputDir string, log logger.Logger) *Intake {
	return &Intake{
		Store:     store,
		Pipeline:  orch,
		TempDir:   tempDir,
		OutputDir: outputDir,
		Export:    summarizer.Export,
		Logger:    log,
	}
}

// Handle moves filePath into the temp dir, creates a job and dispatches it.
// It returns once the job is queued.
func (in *Intake) Handle(ctx context.Context, filePath string) error {
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	if err := os.MkdirAll(in.TempDir, 0755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	inputPath, err := media.TempInputPath(in.TempDir, filePath)
	if err != nil {
		return err
	}
	if err := os.Rename(filePath, inputPath); err != nil {
		return fmt.Errorf("move to temp: %w", err)
	}

	job, err := in.Store.Create(ctx)
	if err != nil {
		_ = os.Remove(inputPath)
		return fmt.Errorf("create job: %w", err)
	}
	ctx = logger.WithJobID(ctx, job.ID)
	in.Logger.Info(ctx, "Queued %s", filepath.Base(filePath))

	return in.Pipeline.Dispatch(ctx, pipeline.Request{
		JobID:     job.ID,
		InputPath: inputPath,
		InputName: filepath.Base(filePath),
		OnFinish: func(ctx context.Context, job models.Job) {
			in.finish(ctx, name, job)
		},
	})
}

func (in *Intake) finish(ctx context.Context, name string, job models.Job) {
	if job.Status != models.JobStatusCompleted {
		in.Logger.Warn(ctx, "No summary written for %s: %s", name, job.ErrorMessage)
		return
	}
	mdPath, docxPath, err := in.Export(in.OutputDir, name, job.SummaryText)
	if err != nil {
		in.Logger.Error(ctx, "Failed to export summary for %s: %v", name, err)
		return
	}
	in.Logger.Info(ctx, "[DONE] %s -> %s, %s", name, mdPath, docxPath)
}
