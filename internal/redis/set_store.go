package redis

import (
	"context"
	"fmt"
	"slices"

	"github.com/pscheid92/nano/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// SetStore maps each (owner, name) pair to one Redis set.
type SetStore struct {
	rdb goredis.Cmdable
}

var _ domain.SetStore = (*SetStore)(nil)

func NewSetStore(rdb goredis.Cmdable) *SetStore {
	return &SetStore{rdb: rdb}
}

func (s *SetStore) Add(ctx context.Context, ownerID, name string, elements []string) (int64, error) {
	if len(elements) == 0 {
		return 0, nil
	}
	n, err := s.rdb.SAdd(ctx, setKey(ownerID, name), toArgs(elements)...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add set elements: %w", err)
	}
	return n, nil
}

func (s *SetStore) Remove(ctx context.Context, ownerID, name string, elements []string) (int64, error) {
	if len(elements) == 0 {
		return 0, nil
	}
	n, err := s.rdb.SRem(ctx, setKey(ownerID, name), toArgs(elements)...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to remove set elements: %w", err)
	}
	return n, nil
}

// Members returns the set sorted, since Redis set order is unspecified.
func (s *SetStore) Members(ctx context.Context, ownerID, name string) ([]string, error) {
	members, err := s.rdb.SMembers(ctx, setKey(ownerID, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read set: %w", err)
	}
	slices.Sort(members)
	return members, nil
}

func setKey(ownerID, name string) string {
	return "set:" + ownerID + ":" + name
}

func toArgs(elements []string) []any {
	args := make([]any, len(elements))
	for i, e := range elements {
		args[i] = e
	}
	return args
}
