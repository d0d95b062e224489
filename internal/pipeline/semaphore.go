package pipeline

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// limiter caps concurrent pipelines and tracks which jobs own a worker.
type limiter struct {
	sem *semaphore.Weighted

	mu      sync.Mutex
	running map[string]struct{}
}

func newLimiter(capacity int) *limiter {
	if capacity <= 0 {
		capacity = 1
	}
	return &limiter{
		sem:     semaphore.NewWeighted(int64(capacity)),
		running: make(map[string]struct{}),
	}
}

// claim reserves jobID for one worker.
func (l *limiter) claim(jobID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.running[jobID]; ok {
		return false
	}
	l.running[jobID] = struct{}{}
	return true
}

func (l *limiter) unclaim(jobID string) {
	l.mu.Lock()
	delete(l.running, jobID)
	l.mu.Unlock()
}

// acquire acquires a slot, blocking if necessary
func (l *limiter) acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// release releases a slot
func (l *limiter) release() {
	l.sem.Release(1)
}
