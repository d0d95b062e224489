package jobstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// each Store implementation runs the same suite
func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"redis":  NewRedis(client, 0),
	}
}

func TestGetUnknown(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "never-created")
			assert.ErrorIs(t, err, ErrNotFound)

			err = store.Update(context.Background(), models.Job{ID: "never-created", Status: models.JobStatusInProgress})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestCreateIsPending(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.Create(ctx)
			require.NoError(t, err)
			require.NotEmpty(t, job.ID)

			got, err := store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, models.JobStatusPending, got.Status)
			assert.Empty(t, got.SummaryText)
			assert.Empty(t, got.ErrorMessage)
			assert.WithinDuration(t, job.CreatedAt, got.CreatedAt, time.Millisecond)

			other, err := store.Create(ctx)
			require.NoError(t, err)
			assert.NotEqual(t, job.ID, other.ID)
		})
	}
}

func TestLifecycle(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.Create(ctx)
			require.NoError(t, err)

			job.Status = models.JobStatusInProgress
			require.NoError(t, store.Update(ctx, job))

			job.Status = models.JobStatusCompleted
			job.SummaryText = "done"
			require.NoError(t, store.Update(ctx, job))

			got, err := store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, models.JobStatusCompleted, got.Status)
			assert.Equal(t, "done", got.SummaryText)

			job.Status = models.JobStatusFailed
			job.ErrorMessage = "late failure"
			assert.ErrorIs(t, store.Update(ctx, job), ErrInvalidTransition)

			job.Status = models.JobStatusCompleted
			assert.ErrorIs(t, store.Update(ctx, job), ErrInvalidTransition, "terminal state is set once")

			got, err = store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, models.JobStatusCompleted, got.Status)
			assert.Empty(t, got.ErrorMessage)
		})
	}
}

func TestNoBackwardTransition(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.Create(ctx)
			require.NoError(t, err)

			job.Status = models.JobStatusCompleted
			assert.ErrorIs(t, store.Update(ctx, job), ErrInvalidTransition, "PENDING cannot complete directly")

			job.Status = models.JobStatusInProgress
			require.NoError(t, store.Update(ctx, job))

			job.Status = models.JobStatusPending
			assert.ErrorIs(t, store.Update(ctx, job), ErrInvalidTransition)
		})
	}
}

func TestConcurrentTerminalUpdates(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			job, err := store.Create(ctx)
			require.NoError(t, err)
			job.Status = models.JobStatusInProgress
			require.NoError(t, store.Update(ctx, job))

			const writers = 8
			var wg sync.WaitGroup
			results := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					j := job
					if i%2 == 0 {
						j.Status = models.JobStatusCompleted
						j.SummaryText = "ok"
					} else {
						j.Status = models.JobStatusFailed
						j.ErrorMessage = "boom"
					}
					results <- store.Update(ctx, j)
				}(i)
			}
			wg.Wait()
			close(results)

			succeeded := 0
			for err := range results {
				if err == nil {
					succeeded++
				} else {
					assert.ErrorIs(t, err, ErrInvalidTransition)
				}
			}
			assert.Equal(t, 1, succeeded, "exactly one terminal write wins")

			got, err := store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.True(t, got.Status.IsTerminal())
		})
	}
}

func TestConcurrentCreate(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var mu sync.Mutex
			ids := map[string]bool{}
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					job, err := store.Create(ctx)
					if !assert.NoError(t, err) {
						return
					}
					mu.Lock()
					ids[job.ID] = true
					mu.Unlock()
				}()
			}
			wg.Wait()
			assert.Len(t, ids, 20)
		})
	}
}
