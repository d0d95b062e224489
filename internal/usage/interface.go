package usage

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/models"
)

// ErrUnknownClient is returned for a key that has no usage record.
var ErrUnknownClient = errors.New("unknown client")

// Client identifies whoever submitted a job.
type Client struct {
	UUID      string
	IP        string
	UserAgent string
	Referer   string
}

// Key prefers the cookie UUID and falls back to the request fingerprint.
func (c Client) Key() string {
	if c.UUID != "" {
		return c.UUID
	}
	return c.IP + "|" + c.UserAgent + "|" + c.Referer
}

// Record is the per-client usage counter.
type Record struct {
	Key           string           `json:"key"`
	IP            string           `json:"ip"`
	UserAgent     string           `json:"user_agent"`
	Referer       string           `json:"referer"`
	UsageCount    int64            `json:"usage_count"`
	LastUsed      time.Time        `json:"last_used"`
	LastJobStatus models.JobStatus `json:"last_job_status,omitempty"`
}

// Tracker counts uploads per client and remembers the last terminal job
// status. It never enforces a quota.
type Tracker interface {
	// AddUsage creates the record if needed and increments its counter.
	AddUsage(ctx context.Context, c Client) (Record, error)
	// SetJobStatus records status against an existing client key.
	SetJobStatus(ctx context.Context, key string, status models.JobStatus) error
	Get(ctx context.Context, key string) (Record, error)
}
