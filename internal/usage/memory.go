package usage

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// MemoryTracker keeps usage records in process memory.
type MemoryTracker struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemory creates an empty MemoryTracker.
func NewMemory() *MemoryTracker {
	return &MemoryTracker{records: make(map[string]*Record)}
}

func (m *MemoryTracker) AddUsage(_ context.Context, c Client) (Record, error) {
	key := c.Key()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		rec = &Record{Key: key}
		m.records[key] = rec
	}
	rec.IP = c.IP
	rec.UserAgent = c.UserAgent
	rec.Referer = c.Referer
	rec.UsageCount++
	rec.LastUsed = time.Now().UTC()
	return *rec, nil
}

func (m *MemoryTracker) SetJobStatus(_ context.Context, key string, status models.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return ErrUnknownClient
	}
	rec.LastJobStatus = status
	return nil
}

func (m *MemoryTracker) Get(_ context.Context, key string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return Record{}, ErrUnknownClient
	}
	return *rec, nil
}
