package media

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// cleanupTempFile removes a temporary file, logs warning if fails
func (s *implStager) cleanupTempFile(ctx context.Context, filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		s.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
		return
	}
	s.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
}
