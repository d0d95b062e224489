package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/config"
	"github.com/nguyentantai21042004/digest-flow/internal/logger"
	"github.com/nguyentantai21042004/digest-flow/internal/storage"
	"github.com/nguyentantai21042004/digest-flow/pkg/executor"
)

// fakeExecutor writes outputBytes to the last argument (the ffmpeg output
// path) and reports exitCode.
type fakeExecutor struct {
	exitCode    int
	outputBytes int
	partial     bool
	err         error
	gotName     string
	gotArgs     []string
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) (executor.Result, error) {
	f.gotName = name
	f.gotArgs = args
	if f.err != nil {
		return executor.Result{ExitCode: -1}, f.err
	}
	if f.exitCode != 0 {
		if f.partial {
			_ = os.WriteFile(args[len(args)-1], []byte("truncated"), 0644)
		}
		return executor.Result{ExitCode: f.exitCode, Stderr: "ffmpeg version x\nInvalid data found when processing input"}, nil
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, make([]byte, f.outputBytes), 0644); err != nil {
		return executor.Result{}, err
	}
	return executor.Result{}, nil
}

type failingStore struct {
	storage.ObjectStore
	putErr  error
	panicOn bool
}

func (f *failingStore) Put(ctx context.Context, name string, r io.Reader, ct string) error {
	if f.panicOn {
		panic("storage client exploded")
	}
	if f.putErr != nil {
		return f.putErr
	}
	return f.ObjectStore.Put(ctx, name, r, ct)
}

func newTestStager(t *testing.T, exec executor.Executor, store storage.ObjectStore) (*implStager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		FFmpeg: config.FFmpegConfig{
			BinaryPath:     "ffmpeg",
			AudioBitrate:   "192k",
			MinOutputBytes: 10_000,
			Timeout:        time.Second,
		},
		Storage: config.StorageConfig{Timeout: time.Second},
		Paths:   config.PathsConfig{Temp: filepath.Join(dir, "temp")},
	}
	s := New(cfg, store, exec, logger.Nop()).(*implStager)
	s.newID = func() string { return "fixed" }
	return s, dir
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "input-abc.mp4")
	require.NoError(t, os.WriteFile(p, []byte("fake video"), 0644))
	return p
}

func assertGone(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.True(t, errors.Is(err, os.ErrNotExist), "%s should be removed", p)
	}
}

func TestStageSuccess(t *testing.T) {
	exec := &fakeExecutor{outputBytes: 20_000}
	store := storage.NewMemory("https://storage.local")
	s, dir := newTestStager(t, exec, store)
	input := writeInput(t, dir)

	ref, err := s.Stage(context.Background(), input, "meeting.mp4")
	require.NoError(t, err)
	assert.Equal(t, "audio-fixed.mp3", ref)

	b, ok := store.Get(ref)
	require.True(t, ok)
	assert.Len(t, b, 20_000)

	audioPath := filepath.Join(s.tempDir, "output-fixed.mp3")
	assert.Equal(t, "ffmpeg", exec.gotName)
	assert.Equal(t, []string{"-i", input, "-vn", "-ac", "1", "-f", "mp3", "-ab", "192k", "-y", audioPath}, exec.gotArgs)

	assertGone(t, input, audioPath)
}

func TestStageSubprocessFailure(t *testing.T) {
	s, dir := newTestStager(t, &fakeExecutor{exitCode: 1}, storage.NewMemory(""))
	input := writeInput(t, dir)

	_, err := s.Stage(context.Background(), input, "meeting.mp4")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubprocessFailure)
	assert.Contains(t, err.Error(), "Invalid data found")

	assertGone(t, input, filepath.Join(s.tempDir, "output-fixed.mp3"))
}

func TestStageSubprocessCouldNotRun(t *testing.T) {
	s, dir := newTestStager(t, &fakeExecutor{err: errors.New("exec: not found")}, storage.NewMemory(""))
	input := writeInput(t, dir)

	_, err := s.Stage(context.Background(), input, "meeting.mp4")
	assert.ErrorIs(t, err, ErrSubprocessFailure)
	assertGone(t, input)
}

func TestStageStorageFailure(t *testing.T) {
	store := &failingStore{ObjectStore: storage.NewMemory(""), putErr: errors.New("403 forbidden")}
	s, dir := newTestStager(t, &fakeExecutor{outputBytes: 20_000}, store)
	input := writeInput(t, dir)

	_, err := s.Stage(context.Background(), input, "meeting.mp4")
	assert.ErrorIs(t, err, ErrStorageFailure)
	assertGone(t, input, filepath.Join(s.tempDir, "output-fixed.mp3"))
}

func TestStageCorruptOutput(t *testing.T) {
	s, dir := newTestStager(t, &fakeExecutor{outputBytes: 9_999}, storage.NewMemory(""))
	input := writeInput(t, dir)

	_, err := s.Stage(context.Background(), input, "meeting.mp4")
	assert.ErrorIs(t, err, ErrCorruptOutput)
	assertGone(t, input, filepath.Join(s.tempDir, "output-fixed.mp3"))
}

func TestStageCleansUpOnPanic(t *testing.T) {
	store := &failingStore{ObjectStore: storage.NewMemory(""), panicOn: true}
	s, dir := newTestStager(t, &fakeExecutor{outputBytes: 20_000}, store)
	input := writeInput(t, dir)

	assert.Panics(t, func() {
		_, _ = s.Stage(context.Background(), input, "meeting.mp4")
	})
	assertGone(t, input, filepath.Join(s.tempDir, "output-fixed.mp3"))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "c", lastLine("a\nb\nc"))
	assert.Equal(t, "only", lastLine("only"))
}

func TestStageRemovesPartialAudioOnFailure(t *testing.T) {
	exec := &fakeExecutor{exitCode: 1, partial: true}
	s, dir := newTestStager(t, exec, storage.NewMemory(""))
	input := writeInput(t, dir)

	_, err := s.Stage(context.Background(), input, "meeting.mp4")
	require.ErrorIs(t, err, ErrSubprocessFailure)

	written := exec.gotArgs[len(exec.gotArgs)-1]
	assert.Equal(t, s.audioPath("fixed"), written)
	assertGone(t, input, written)
}
