package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/storage"
)

// ErrTranscriptionFailure covers every way the transcription call can go wrong.
var ErrTranscriptionFailure = errors.New("transcription failed")

// Fetcher exchanges a staged object for its transcript.
type Fetcher interface {
	// Fetch returns the backend's JSON payload as-is.
	Fetch(ctx context.Context, objectName string) ([]byte, error)
}

type implFetcher struct {
	url     string
	apiKey  string
	timeout time.Duration
	ttl     time.Duration
	store   storage.ObjectStore
	http    *http.Client
	logger  logger.Logger
}

// New creates a Fetcher that signs objects from store for ttl.
func New(cfg config.TranscriptionConfig, ttl time.Duration, store storage.ObjectStore, hc *http.Client, log logger.Logger) Fetcher {
	if hc == nil {
		hc = &http.Client{}
	}
	return &implFetcher{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		ttl:     ttl,
		store:   store,
		http:    hc,
		logger:  log,
	}
}

type transcribeRequest struct {
	SignedURL string `json:"signed_url"`
}

func (f *implFetcher) Fetch(ctx context.Context, objectName string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	signed, err := f.store.SignedURL(ctx, objectName, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailure, err)
	}

	body, err := json.Marshal(transcribeRequest{SignedURL: signed})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTranscriptionFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTranscriptionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	f.logger.Info(ctx, "Requesting transcript for %s", objectName)

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscriptionFailure, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTranscriptionFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrTranscriptionFailure, resp.StatusCode)
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrTranscriptionFailure)
	}

	f.logger.Info(ctx, "Transcript received for %s (%d bytes)", objectName, len(payload))
	return payload, nil
}
