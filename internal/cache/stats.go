package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tradepulse/gateway/internal/models"
)

const statsSnapshotKey = "admin:stats:snapshot"

// StatsSnapshotStore keeps the last good admin stats read in redis so the
// console cards can fall back to a stale value when the live fetch fails.
type StatsSnapshotStore struct {
	redis *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewStatsSnapshotStore(client *redis.Client, ttl time.Duration, log zerolog.Logger) *StatsSnapshotStore {
	return &StatsSnapshotStore{
		redis: client,
		ttl:   ttl,
		log:   log,
	}
}

// Save is best-effort: a snapshot write failure never disturbs the live read
// that produced it.
func (s *StatsSnapshotStore) Save(ctx context.Context, stats models.AdminStats) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, statsSnapshotKey, payload, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Msg("stats snapshot write failed")
	}
}

func (s *StatsSnapshotStore) Load(ctx context.Context) (models.AdminStats, bool) {
	raw, err := s.redis.Get(ctx, statsSnapshotKey).Bytes()
	if err != nil {
		return models.AdminStats{}, false
	}
	var stats models.AdminStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.AdminStats{}, false
	}
	return stats, true
}
