package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

type memEntry struct {
	mu  sync.Mutex
	job models.Job
}

// MemoryStore keeps jobs in process memory. State is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*memEntry
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*memEntry)}
}

func (m *MemoryStore) Create(_ context.Context) (models.Job, error) {
	job := models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[job.ID]; exists {
		return models.Job{}, fmt.Errorf("job %s already exists", job.ID)
	}
	m.jobs[job.ID] = &memEntry{job: job}
	return job, nil
}

func (m *MemoryStore) entry(id string) (*memEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[id]
	return e, ok
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Job, error) {
	e, ok := m.entry(id)
	if !ok {
		return models.Job{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.job, nil
}

func (m *MemoryStore) Update(_ context.Context, job models.Job) error {
	e, ok := m.entry(job.ID)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := checkUpdate(e.job, job); err != nil {
		return fmt.Errorf("%w: %s -> %s", err, e.job.Status, job.Status)
	}
	job.CreatedAt = e.job.CreatedAt
	e.job = job
	return nil
}
