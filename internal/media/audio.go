package media

import (
	"context"
	"fmt"
)

// extractAudio converts videoPath to a mono MP3 at audioPath using the configured bitrate.
//
// -vn: drop video
// -ac 1: mono
// -f mp3 -ab <rate>: fixed container and bitrate
// -y: overwrite
func (s *implStager) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	if s.ffmpeg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ffmpeg.Timeout)
		defer cancel()
	}

	args := []string{
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-f", "mp3",
		"-ab", s.ffmpeg.AudioBitrate,
		"-y",
		audioPath,
	}

	s.logger.Info(ctx, "Extracting audio: %s", videoPath)

	res, err := s.executor.Run(ctx, s.ffmpeg.BinaryPath, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubprocessFailure, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrSubprocessFailure, res.ExitCode, lastLine(res.Stderr))
	}

	s.logger.Info(ctx, "Audio extracted: %s", audioPath)
	return nil
}

// lastLine keeps error messages short; ffmpeg prints its banner first.
func lastLine(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			return s[i+1:]
		}
	}
	return s
}
