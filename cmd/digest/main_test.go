package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/summarizer"
)

func fakeChatServer(t *testing.T, reply string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeConfig(t *testing.T, llmURL string) string {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEYS", "GCS_BUCKET", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
storage:
  bucket: "meeting-audio"
transcription:
  url: "http://127.0.0.1:1/transcribe-gcs"
llm:
  base_url: %q
  api_key: "sk-test"
`, llmURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildCLI(t *testing.T) {
	root := buildCLI()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "watch", "summarize"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRunSummarizeDocument(t *testing.T) {
	srv, calls := fakeChatServer(t, "Short summary.")
	configFile = writeConfig(t, srv.URL)

	doc := filepath.Join(t.TempDir(), "lease.txt")
	require.NoError(t, os.WriteFile(doc, []byte("The tenant pays rent monthly."), 0644))

	var out bytes.Buffer
	err := runSummarize(context.Background(), doc, summarizer.ModeDocument, &out)
	require.NoError(t, err)

	assert.Equal(t, "Short summary.\n", out.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestRunSummarizeMalformedTranscript(t *testing.T) {
	srv, calls := fakeChatServer(t, "unused")
	configFile = writeConfig(t, srv.URL)

	payload := filepath.Join(t.TempDir(), "meeting.json")
	require.NoError(t, os.WriteFile(payload, []byte(`{"segments": []}`), 0644))

	var out bytes.Buffer
	err := runSummarize(context.Background(), payload, summarizer.ModeMeeting, &out)
	require.ErrorIs(t, err, summarizer.ErrMalformedInput)
	assert.Zero(t, atomic.LoadInt32(calls))
	assert.Empty(t, out.String())
}

func TestRunSummarizeMissingFile(t *testing.T) {
	srv, _ := fakeChatServer(t, "unused")
	configFile = writeConfig(t, srv.URL)

	err := runSummarize(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), summarizer.ModeDocument, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	srv, _ := fakeChatServer(t, "unused")
	configFile = writeConfig(t, srv.URL)

	cfg, _, err := loadConfig()
	require.NoError(t, err)

	base := t.TempDir()
	cfg.Paths.Input = filepath.Join(base, "in")
	cfg.Paths.Output = filepath.Join(base, "out")
	cfg.Paths.Temp = filepath.Join(base, "tmp")
	require.NoError(t, ensureDirectories(cfg))

	for _, dir := range []string{cfg.Paths.Input, cfg.Paths.Output, cfg.Paths.Temp} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
