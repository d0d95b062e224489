package watcher

import "context"

// Watcher monitors a drop folder until its context is cancelled.
type Watcher interface {
	// Start blocks until ctx is done, then waits for pending intake.
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler receives the path of each new video in the folder.
type EventHandler func(ctx context.Context, filePath string) error
