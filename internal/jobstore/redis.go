package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

const maxUpdateAttempts = 10

// RedisStore keeps jobs as JSON under job:<id>. Updates use WATCH so
// concurrent writers to one job never lose an update.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a RedisStore. ttl of zero keeps records forever.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) jobKey(id string) string { return fmt.Sprintf("job:%s", id) }

func (r *RedisStore) Create(ctx context.Context) (models.Job, error) {
	job := models.Job{
		ID:        uuid.NewString(),
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(job)
	if err != nil {
		return models.Job{}, fmt.Errorf("encode job: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.jobKey(job.ID), b, r.ttl).Result()
	if err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	if !ok {
		return models.Job{}, fmt.Errorf("job %s already exists", job.ID)
	}
	return job, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (models.Job, error) {
	return r.get(ctx, r.client, id)
}

func (r *RedisStore) get(ctx context.Context, c redis.Cmdable, id string) (models.Job, error) {
	val, err := c.Get(ctx, r.jobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Job{}, ErrNotFound
		}
		return models.Job{}, fmt.Errorf("get job: %w", err)
	}
	var j models.Job
	if err := json.Unmarshal(val, &j); err != nil {
		return models.Job{}, fmt.Errorf("decode job: %w", err)
	}
	return j, nil
}

func (r *RedisStore) Update(ctx context.Context, job models.Job) error {
	key := r.jobKey(job.ID)

	txf := func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, job.ID)
		if err != nil {
			return err
		}
		if err := checkUpdate(current, job); err != nil {
			return fmt.Errorf("%w: %s -> %s", err, current.Status, job.Status)
		}
		job.CreatedAt = current.CreatedAt

		b, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("encode job: %w", err)
		}
		expiration := time.Duration(0)
		if r.ttl > 0 {
			expiration = redis.KeepTTL
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, expiration)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update job %s: too much contention", job.ID)
}
