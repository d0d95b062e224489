package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/llm"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/media"
	"github.com/nguyentantai21042004/digest-flow/internal/models"
	"github.com/nguyentantai21042004/digest-flow/internal/pipeline"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
)

type uploadResponse struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

type statusResponse struct {
	JobID     string           `json:"job_id"`
	Status    models.JobStatus `json:"status"`
	Summary   string           `json:"summary,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadMB<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "missing upload field \"file\"")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}
	if mimeType := header.Header.Get("Content-Type"); !media.IsSupportedMIME(mimeType) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file format: %s. Please upload an MP4, MKV, WebM, or MOV file.", mimeType))
		return
	}

	inputPath, err := media.TempInputPath(s.tempDir, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	client := clientFromRequest(w, r, true)

	if err := saveUpload(file, inputPath); err != nil {
		s.logger.Error(ctx, "Failed to save upload: %v", err)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	job, err := s.store.Create(ctx)
	if err != nil {
		_ = os.Remove(inputPath)
		s.logger.Error(ctx, "Failed to create job: %v", err)
		writeError(w, http.StatusInternalServerError, "could not create job")
		return
	}
	s.metrics.RecordCreated()

	ctx = logger.WithJobID(ctx, job.ID)
	err = s.pipeline.Dispatch(ctx, pipeline.Request{
		JobID:     job.ID,
		InputPath: inputPath,
		InputName: header.Filename,
		ClientKey: client.Key(),
	})
	if err != nil {
		_ = os.Remove(inputPath)
		s.logger.Error(ctx, "Failed to dispatch job: %v", err)
		job.Status = models.JobStatusFailed
		job.ErrorMessage = "could not start job: " + err.Error()
		if uerr := s.store.Update(ctx, job); uerr != nil {
			s.logger.Warn(ctx, "Failed to mark job failed: %v", uerr)
		}
		writeError(w, http.StatusInternalServerError, "could not start job")
		return
	}

	// counted only once the job is actually running
	if s.usage != nil {
		if _, err := s.usage.AddUsage(ctx, client); err != nil {
			s.logger.Warn(ctx, "Failed to record usage for %s: %v", client.Key(), err)
		}
	}

	s.logger.Info(ctx, "Accepted upload %s (%d bytes)", header.Filename, header.Size)
	writeJSON(w, http.StatusAccepted, uploadResponse{
		JobID:     job.ID,
		StatusURL: "/meeting-summarizer/status/" + job.ID,
	})
}

func saveUpload(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found for ID: "+id)
			return
		}
		s.logger.Error(r.Context(), "Failed to load job %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load job")
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		JobID:     job.ID,
		Status:    job.Status,
		Summary:   job.SummaryText,
		Error:     job.ErrorMessage,
		CreatedAt: job.CreatedAt,
	})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxDocumentKB<<10)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	client := clientFromRequest(w, r, false)
	if s.usage != nil {
		if _, err := s.usage.AddUsage(ctx, client); err != nil {
			s.logger.Warn(ctx, "Failed to record usage for %s: %v", client.Key(), err)
		}
	}

	summary, err := s.summarizer.SummarizeDocument(ctx, string(body))
	switch {
	case errors.Is(err, summarizer.ErrMalformedInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, llm.ErrTransport):
		s.logger.Error(ctx, "Document summary failed: %v", err)
		writeError(w, http.StatusBadGateway, "summarization backend unavailable")
		return
	case err != nil:
		s.logger.Error(ctx, "Document summary failed: %v", err)
		writeError(w, http.StatusInternalServerError, "summarization failed")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
