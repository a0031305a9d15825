package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/nano/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const mathMarkupKey = "math_markup"

// PreferenceStore keeps math markup choices in one hash keyed by username.
type PreferenceStore struct {
	rdb goredis.Cmdable
}

var _ domain.PreferenceStore = (*PreferenceStore)(nil)

func NewPreferenceStore(rdb goredis.Cmdable) *PreferenceStore {
	return &PreferenceStore{rdb: rdb}
}

func (s *PreferenceStore) MathMarkup(ctx context.Context, username string) (domain.MathMarkup, error) {
	raw, err := s.rdb.HGet(ctx, mathMarkupKey, username).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.MarkupLatex, nil
	}
	if err != nil {
		return domain.MarkupLatex, fmt.Errorf("failed to read math markup: %w", err)
	}

	markup, err := domain.ParseMathMarkup(raw)
	if err != nil {
		slog.Warn("Ignoring unreadable math markup preference", "username", username, "value", raw)
		return domain.MarkupLatex, nil
	}
	return markup, nil
}

func (s *PreferenceStore) SetMathMarkup(ctx context.Context, username string, markup domain.MathMarkup) error {
	if err := s.rdb.HSet(ctx, mathMarkupKey, username, markup.Key()).Err(); err != nil {
		return fmt.Errorf("failed to store math markup: %w", err)
	}
	return nil
}
