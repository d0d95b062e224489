package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/jobstore"
	"github.com/nguyentantai21042004/digest-flow/internal/llm"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/models"
	"github.com/nguyentantai21042004/digest-flow/internal/pipeline"
	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
	"github.com/nguyentantai21042004/digest-flow/internal/usage"
)

type fakeOrchestrator struct {
	mu       sync.Mutex
	requests []pipeline.Request
	err      error
}

func (f *fakeOrchestrator) Dispatch(_ context.Context, req pipeline.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.err
}

func (f *fakeOrchestrator) Run(context.Context, pipeline.Request) (models.Job, error) {
	return models.Job{}, errors.New("not used")
}

func (f *fakeOrchestrator) Wait() {}

type fakeSummarizer struct {
	summary string
	err     error
	got     string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, content []byte, _ summarizer.Mode) (string, error) {
	return f.SummarizeDocument(ctx, string(content))
}

func (f *fakeSummarizer) SummarizeDocument(_ context.Context, text string) (string, error) {
	f.got = text
	return f.summary, f.err
}

func (f *fakeSummarizer) SummarizeTranscript(context.Context, []byte) (string, error) {
	return f.summary, f.err
}

type testServer struct {
	handler http.Handler
	store   *jobstore.MemoryStore
	orch    *fakeOrchestrator
	sum     *fakeSummarizer
	usage   *usage.MemoryTracker
	tempDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		store:   jobstore.NewMemory(),
		orch:    &fakeOrchestrator{},
		sum:     &fakeSummarizer{summary: "plain summary"},
		usage:   usage.NewMemory(),
		tempDir: t.TempDir(),
	}
	srv := NewServer(config.ServerConfig{
		AllowedOrigins: []string{"*"},
		MaxUploadMB:    1,
		MaxDocumentKB:  1,
	}, ts.tempDir, Deps{
		Store:      ts.store,
		Pipeline:   ts.orch,
		Summarizer: ts.sum,
		Usage:      ts.usage,
		Logger:     logger.Nop(),
	})
	ts.handler = srv.Handler()
	return ts
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/meeting-summarizer", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAccepted(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, uploadRequest(t, "standup.mov", "video/quicktime", []byte("video-bytes")))

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "/meeting-summarizer/status/"+resp.JobID, resp.StatusURL)

	job, err := ts.store.Get(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	require.Len(t, ts.orch.requests, 1)
	req := ts.orch.requests[0]
	assert.Equal(t, resp.JobID, req.JobID)
	assert.Equal(t, "standup.mov", req.InputName)
	assert.True(t, strings.HasSuffix(req.InputPath, ".mov"))
	data, err := os.ReadFile(req.InputPath)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == clientCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "client cookie issued")
	assert.Equal(t, 365*24*3600, cookie.MaxAge)
	assert.Equal(t, cookie.Value, req.ClientKey)

	rec2, err := ts.usage.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec2.UsageCount)
}

func TestUploadReusesCookie(t *testing.T) {
	ts := newTestServer(t)

	req := uploadRequest(t, "a.mp4", "video/mp4", []byte("v"))
	req.AddCookie(&http.Cookie{Name: clientCookie, Value: "known-client"})
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, "known-client", ts.orch.requests[0].ClientKey)
}

func TestUploadRejected(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
	}{
		{"empty file", "a.mp4", "video/mp4", nil},
		{"bad mime", "a.mp4", "application/pdf", []byte("x")},
		{"bad extension", "a.avi", "video/mp4", []byte("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, uploadRequest(t, tt.filename, tt.contentType, tt.data))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, ts.orch.requests)
			entries, _ := os.ReadDir(ts.tempDir)
			assert.Empty(t, entries)
		})
	}
}

func TestUploadDispatchFailureRemovesInput(t *testing.T) {
	ts := newTestServer(t)
	ts.orch.err = errors.New("queue closed")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, uploadRequest(t, "a.mp4", "video/mp4", []byte("v")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	req := ts.orch.requests[0]
	_, err := os.Stat(req.InputPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	job, err := ts.store.Get(context.Background(), req.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "queue closed")

	_, err = ts.usage.Get(context.Background(), req.ClientKey)
	assert.ErrorIs(t, err, usage.ErrUnknownClient, "failed uploads are not counted")
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, uploadRequest(t, "a.mp4", "video/mp4", make([]byte, 2<<20)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, ts.orch.requests)
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meeting-summarizer/status/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	job, err := ts.store.Create(ctx)
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meeting-summarizer/status/"+job.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "PENDING", raw["status"])
	assert.NotContains(t, raw, "summary")
	assert.NotContains(t, raw, "error")

	job.Status = models.JobStatusInProgress
	require.NoError(t, ts.store.Update(ctx, job))
	job.Status = models.JobStatusFailed
	job.ErrorMessage = "stage: audio extraction failed"
	require.NoError(t, ts.store.Update(ctx, job))

	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meeting-summarizer/status/"+job.ID, nil))
	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, models.JobStatusFailed, resp.Status)
	assert.Equal(t, "stage: audio extraction failed", resp.Error)
	assert.Empty(t, resp.Summary)
}

func TestSummarize(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader("the lease runs for two years"))
	req.Header.Set("User-Agent", "curl/8")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp summaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "plain summary", resp.Summary)
	assert.Equal(t, "the lease runs for two years", ts.sum.got)

	rec2, err := ts.usage.Get(context.Background(), "192.0.2.1|curl/8|")
	require.NoError(t, err, "fingerprint used without cookie")
	assert.Equal(t, int64(1), rec2.UsageCount)
}

func TestSummarizeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"malformed", fmt.Errorf("%w: document is empty", summarizer.ErrMalformedInput), http.StatusBadRequest},
		{"transport", fmt.Errorf("%w: status 503", llm.ErrTransport), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.sum.err = tt.err

			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader("x")))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSummarizeTooLarge(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(strings.Repeat("a ", 2048))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name            string
		origins         []string
		wantOrigin      string
		wantCredentials string
	}{
		{"wildcard sends no credentials", []string{"*"}, "*", ""},
		{"explicit origin allows credentials", []string{"https://app.example"}, "https://app.example", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(config.ServerConfig{AllowedOrigins: tt.origins}, t.TempDir(), Deps{
				Store:  jobstore.NewMemory(),
				Logger: logger.Nop(),
			})

			req := httptest.NewRequest(http.MethodOptions, "/summarize", nil)
			req.Header.Set("Origin", "https://app.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "192.0.2.1", clientIP(req))
}
