package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pscheid92/nano/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// CooldownStore holds per-user flags that expire on their own.
type CooldownStore struct {
	rdb goredis.Cmdable
}

var _ domain.CooldownStore = (*CooldownStore)(nil)

func NewCooldownStore(rdb goredis.Cmdable) *CooldownStore {
	return &CooldownStore{rdb: rdb}
}

// Acquire uses SET NX EX so two concurrent thanks cannot both pass.
func (s *CooldownStore) Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error) {
	set, err := s.rdb.SetNX(ctx, cooldownKey(userID), "", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	return set, nil
}

func (s *CooldownStore) Remaining(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := s.rdb.PTTL(ctx, cooldownKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	// -2: no key, -1: no expiry (never written by Acquire)
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func cooldownKey(userID string) string {
	return "on-cooldown:" + userID
}
