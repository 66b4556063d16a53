package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps the latest percentage per job in redis, keyed by the
// opaque job id. It is the source of truth for fractional progress; the
// task row only carries the coarse complete flag.
type ProgressStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewProgressStore(rdb *redis.Client) *ProgressStore {
	return &ProgressStore{RDB: rdb, TTL: 24 * time.Hour}
}

func progressKey(jobID string) string { return "task:progress:" + jobID }

func (s *ProgressStore) Set(ctx context.Context, jobID string, pct int) error {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return s.RDB.Set(ctx, progressKey(jobID), pct, s.TTL).Err()
}

// Get returns the last reported percentage. A missing key reads as 100:
// an evicted or unknown job is treated as finished so polling clients
// never wait forever.
func (s *ProgressStore) Get(ctx context.Context, jobID string) (int, error) {
	pct, err := s.RDB.Get(ctx, progressKey(jobID)).Int()
	if errors.Is(err, redis.Nil) {
		return 100, nil
	}
	if err != nil {
		return 0, err
	}
	return pct, nil
}
