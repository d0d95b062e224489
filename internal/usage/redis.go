package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// RedisTracker stores each record as a hash under usage:<key>.
type RedisTracker struct {
	client *redis.Client
}

// NewRedis creates a RedisTracker.
func NewRedis(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func (r *RedisTracker) usageKey(key string) string { return fmt.Sprintf("usage:%s", key) }

func (r *RedisTracker) AddUsage(ctx context.Context, c Client) (Record, error) {
	key := r.usageKey(c.Key())
	now := time.Now().UTC()

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"ip", c.IP,
		"user_agent", c.UserAgent,
		"referer", c.Referer,
		"last_used", now.Format(time.RFC3339Nano),
	)
	incr := pipe.HIncrBy(ctx, key, "usage_count", 1)
	status := pipe.HGet(ctx, key, "last_job_status")
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("add usage: %w", err)
	}

	return Record{
		Key:           c.Key(),
		IP:            c.IP,
		UserAgent:     c.UserAgent,
		Referer:       c.Referer,
		UsageCount:    incr.Val(),
		LastUsed:      now,
		LastJobStatus: models.JobStatus(status.Val()),
	}, nil
}

func (r *RedisTracker) SetJobStatus(ctx context.Context, key string, status models.JobStatus) error {
	k := r.usageKey(key)
	n, err := r.client.Exists(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	if n == 0 {
		return ErrUnknownClient
	}
	if err := r.client.HSet(ctx, k, "last_job_status", string(status)).Err(); err != nil {
		return fmt.Errorf("set job status: %w", err)
	}
	return nil
}

func (r *RedisTracker) Get(ctx context.Context, key string) (Record, error) {
	vals, err := r.client.HGetAll(ctx, r.usageKey(key)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("get usage: %w", err)
	}
	if len(vals) == 0 {
		return Record{}, ErrUnknownClient
	}

	count, _ := strconv.ParseInt(vals["usage_count"], 10, 64)
	lastUsed, _ := time.Parse(time.RFC3339Nano, vals["last_used"])
	return Record{
		Key:           key,
		IP:            vals["ip"],
		UserAgent:     vals["user_agent"],
		Referer:       vals["referer"],
		UsageCount:    count,
		LastUsed:      lastUsed,
		LastJobStatus: models.JobStatus(vals["last_job_status"]),
	}, nil
}
