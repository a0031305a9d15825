package domain

import (
	"context"
	"time"
)

// ReputationEntry is one row of the leaderboard.
type ReputationEntry struct {
	Username string
	Score    int64
}

// ReputationStore keeps one score per username.
type ReputationStore interface {
	// Increment adds one point to username and returns the new score.
	Increment(ctx context.Context, username string) (int64, error)
	// Get returns the score and 1-based rank; found is false for users never thanked.
	Get(ctx context.Context, username string) (score, rank int64, found bool, err error)
	// Top returns the n highest scores, best first.
	Top(ctx context.Context, n int) ([]ReputationEntry, error)
}

// CooldownStore holds time-limited per-user flags.
type CooldownStore interface {
	// Acquire sets the flag for ttl and reports whether it was not already set.
	Acquire(ctx context.Context, userID string, ttl time.Duration) (bool, error)
	// Remaining is zero when no cooldown is active.
	Remaining(ctx context.Context, userID string) (time.Duration, error)
}

// PreferenceStore keeps each user's math markup choice.
type PreferenceStore interface {
	// MathMarkup returns MarkupLatex for users without a stored preference.
	MathMarkup(ctx context.Context, username string) (MathMarkup, error)
	SetMathMarkup(ctx context.Context, username string, markup MathMarkup) error
}

// SetStore keeps named string sets owned by a user.
type SetStore interface {
	Add(ctx context.Context, ownerID, name string, elements []string) (int64, error)
	Remove(ctx context.Context, ownerID, name string, elements []string) (int64, error)
	Members(ctx context.Context, ownerID, name string) ([]string, error)
}
