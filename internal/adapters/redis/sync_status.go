package redisad

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"cruise_catalog/internal/adapters/observability"
)

// SyncStatus reads the flag the import orchestrator keeps in Redis while a sync
// runs. It never writes the key.
type SyncStatus struct {
	c   *redis.Client
	key string
}

func NewSyncStatus(c *redis.Client, key string) *SyncStatus {
	return &SyncStatus{c: c, key: key}
}

// IsSyncInProgress is false when the key is absent or unreadable.
func (s *SyncStatus) IsSyncInProgress(ctx context.Context) bool {
	v, err := s.c.Get(ctx, s.key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", s.key).Msg("sync flag lookup failed")
		}
		observability.ObserveSync(false)
		return false
	}
	on := isTruthy(v)
	observability.ObserveSync(on)
	return on
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "running", "in_progress":
		return true
	}
	return false
}
