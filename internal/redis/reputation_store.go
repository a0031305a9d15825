package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/pscheid92/nano/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const reputationKey = "reputation"

// ReputationStore keeps scores in a single sorted set keyed by username.
type ReputationStore struct {
	rdb goredis.Cmdable
}

var _ domain.ReputationStore = (*ReputationStore)(nil)

func NewReputationStore(rdb goredis.Cmdable) *ReputationStore {
	return &ReputationStore{rdb: rdb}
}

func (s *ReputationStore) Increment(ctx context.Context, username string) (int64, error) {
	score, err := s.rdb.ZIncrBy(ctx, reputationKey, 1, username).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment reputation: %w", err)
	}
	return int64(score), nil
}

func (s *ReputationStore) Get(ctx context.Context, username string) (int64, int64, bool, error) {
	var scoreCmd *goredis.FloatCmd
	var rankCmd *goredis.IntCmd

	_, err := s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		scoreCmd = pipe.ZScore(ctx, reputationKey, username)
		rankCmd = pipe.ZRevRank(ctx, reputationKey, username)
		return nil
	})
	if errors.Is(err, goredis.Nil) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to read reputation: %w", err)
	}

	return int64(scoreCmd.Val()), rankCmd.Val() + 1, true, nil
}

func (s *ReputationStore) Top(ctx context.Context, n int) ([]domain.ReputationEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.rdb.ZRevRangeWithScores(ctx, reputationKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]domain.ReputationEntry, 0, len(rows))
	for _, row := range rows {
		name, _ := row.Member.(string)
		entries = append(entries, domain.ReputationEntry{Username: name, Score: int64(row.Score)})
	}
	return entries, nil
}
