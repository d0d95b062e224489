package media

import (
	"context"
	"errors"
)

var (
	// ErrSubprocessFailure means the audio extractor exited non-zero or could not run.
	ErrSubprocessFailure = errors.New("audio extraction failed")
	// ErrStorageFailure means the extracted audio could not be uploaded or inspected.
	ErrStorageFailure = errors.New("audio upload failed")
	// ErrCorruptOutput means the stored audio is smaller than the sanity threshold.
	ErrCorruptOutput = errors.New("audio output too small")
)

// Stager turns an uploaded video into a stored audio object.
type Stager interface {
	// Stage extracts audio from inputPath and uploads it, returning the
	// object name. inputPath and the intermediate audio file are removed
	// on every return path, including panics.
	Stage(ctx context.Context, inputPath, inputName string) (string, error)
}
