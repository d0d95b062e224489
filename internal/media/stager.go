package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

func (s *implStager) Stage(ctx context.Context, inputPath, inputName string) (string, error) {
	id := s.newID()
	audioPath := s.audioPath(id)

	defer func() {
		s.cleanupTempFile(ctx, inputPath)
		s.cleanupTempFile(ctx, audioPath)
	}()

	s.logger.Info(ctx, "Staging %s", inputName)

	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create temp dir: %v", ErrSubprocessFailure, err)
	}

	if err := s.extractAudio(ctx, inputPath, audioPath); err != nil {
		return "", err
	}

	objectName := "audio-" + id + ".mp3"
	if err := s.upload(ctx, audioPath, objectName); err != nil {
		return "", err
	}

	size, err := s.storedSize(ctx, objectName)
	if err != nil {
		return "", err
	}
	if size < s.ffmpeg.MinOutputBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, want at least %d", ErrCorruptOutput, objectName, size, s.ffmpeg.MinOutputBytes)
	}

	s.logger.Info(ctx, "Staged %s as %s (%d bytes)", inputName, objectName, size)
	return objectName, nil
}

func (s *implStager) audioPath(id string) string {
	return filepath.Join(s.tempDir, "output-"+id+".mp3")
}

func (s *implStager) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storageCfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.storageCfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *implStager) upload(ctx context.Context, audioPath, objectName string) error {
	f, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("%w: open extracted audio: %v", ErrSubprocessFailure, err)
	}
	defer f.Close()

	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	if err := s.store.Put(ctx, objectName, f, "audio/mpeg"); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (s *implStager) storedSize(ctx context.Context, objectName string) (int64, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	size, err := s.store.Size(ctx, objectName)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return size, nil
}
