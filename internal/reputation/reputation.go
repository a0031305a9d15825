// Package reputation implements thank-you points: thanking, the cooldown
// between thanks, per-user lookups and the leaderboard.
package reputation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pscheid92/nano/internal/domain"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/metrics"
)

const (
	Milestone = 1000

	DefaultBoardSize = 10
	MaxBoardSize     = 50

	SelfThankReply    = "You can't thank *yourself*, silly!"
	NotAllowedReply   = "That's not someone you're allowed to thank <-<"
	FailureMessage    = "Redis error: contact Pollards!"
	milestoneGIF      = "https://tenor.com/view/happy-new-year2021version-gif-19777838"
	leaderboardHeader = "# Leaderboard\n\n"
)

type Service struct {
	reps      domain.ReputationStore
	cooldowns domain.CooldownStore
	cooldown  time.Duration
}

func NewService(reps domain.ReputationStore, cooldowns domain.CooldownStore, cooldown time.Duration) *Service {
	return &Service{reps: reps, cooldowns: cooldowns, cooldown: cooldown}
}

// CanThank is false for bots and for thanking yourself.
func CanThank(thanker, thankee domain.User) bool {
	return !thanker.Bot && thanker.ID != thankee.ID
}

// ThankOne handles the slash command form: one explicit target.
func (s *Service) ThankOne(ctx context.Context, thanker, thankee domain.User) (string, error) {
	remaining, err := s.cooldowns.Remaining(ctx, thanker.ID)
	if err != nil {
		return "", apperrors.InternalError("failed to check cooldown", err)
	}
	if remaining > 0 {
		metrics.ThanksTotal.WithLabelValues("cooldown").Inc()
		return fmt.Sprintf("You're still on cooldown: wait %d seconds, please!", seconds(remaining)), nil
	}
	if !CanThank(thanker, thankee) {
		metrics.ThanksTotal.WithLabelValues("forbidden").Inc()
		return NotAllowedReply, nil
	}

	acquired, err := s.cooldowns.Acquire(ctx, thanker.ID, s.cooldown)
	if err != nil {
		return "", apperrors.InternalError("failed to start cooldown", err)
	}
	if !acquired {
		metrics.ThanksTotal.WithLabelValues("cooldown").Inc()
		return fmt.Sprintf("You're still on cooldown: wait %d seconds, please!", seconds(s.cooldown)), nil
	}

	score, err := s.reps.Increment(ctx, thankee.Username)
	if err != nil {
		return "", apperrors.InternalError("failed to thank", err).WithField("thankee", thankee.Username)
	}
	metrics.ThanksTotal.WithLabelValues("thanked").Inc()

	if score == Milestone {
		return fmt.Sprintf("**%s** has helped **%d** people!!! In recognition of this achievement, %s can redeem these points for a book of your choosing: contact PollardsRho for more information. \n%s",
			thankee.Username, Milestone, thankee.Username, milestoneGIF), nil
	}
	return thankedLine(thankee.Username, score), nil
}

// ThankMentions handles a chat message that thanks everyone it mentions.
// It returns the replies to send in order; none means stay quiet. The
// cooldown starts only if at least one mention was thanked.
func (s *Service) ThankMentions(ctx context.Context, author domain.User, mentions []domain.User) ([]string, error) {
	remaining, err := s.cooldowns.Remaining(ctx, author.ID)
	if err != nil {
		return nil, apperrors.InternalError("failed to check cooldown", err)
	}
	if remaining > 0 {
		metrics.ThanksTotal.WithLabelValues("cooldown").Inc()
		return []string{cooldownReply(remaining)}, nil
	}

	var replies []string
	var eligible []domain.User
	seen := make(map[string]bool)
	for _, m := range mentions {
		if m.ID == author.ID {
			if !seen[m.ID] {
				metrics.ThanksTotal.WithLabelValues("self").Inc()
				replies = append(replies, SelfThankReply)
			}
			seen[m.ID] = true
			continue
		}
		if seen[m.ID] || !CanThank(author, m) {
			continue
		}
		seen[m.ID] = true
		eligible = append(eligible, m)
	}
	if len(eligible) == 0 {
		return replies, nil
	}

	acquired, err := s.cooldowns.Acquire(ctx, author.ID, s.cooldown)
	if err != nil {
		return nil, apperrors.InternalError("failed to start cooldown", err)
	}
	if !acquired {
		metrics.ThanksTotal.WithLabelValues("cooldown").Inc()
		return append(replies, cooldownReply(s.cooldown)), nil
	}

	var b strings.Builder
	for _, m := range eligible {
		score, err := s.reps.Increment(ctx, m.Username)
		if err != nil {
			return nil, apperrors.InternalError("failed to thank", err).WithField("thankee", m.Username)
		}
		metrics.ThanksTotal.WithLabelValues("thanked").Inc()
		b.WriteString(thankedLine(m.Username, score))
	}
	return append(replies, b.String()), nil
}

// Reputation formats one user's score and rank.
func (s *Service) Reputation(ctx context.Context, user domain.User) (string, error) {
	score, rank, found, err := s.reps.Get(ctx, user.Username)
	if err != nil {
		return "", apperrors.InternalError("failed to read reputation", err)
	}
	if !found {
		return fmt.Sprintf("User %s has **0** points (not ranked yet)", user.Name()), nil
	}
	return fmt.Sprintf("User %s has **%d** points (ranked *%d*)", user.Name(), score, rank), nil
}

// Leaderboard lists the top n users, n clamped to [0, MaxBoardSize].
func (s *Service) Leaderboard(ctx context.Context, n int) (string, error) {
	n = max(0, min(n, MaxBoardSize))

	entries, err := s.reps.Top(ctx, n)
	if err != nil {
		return "", apperrors.InternalError("failed to read leaderboard", err)
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("1. **%s** — **%5d** points", e.Username, e.Score)
	}
	return leaderboardHeader + strings.Join(lines, "\n"), nil
}

func thankedLine(username string, score int64) string {
	return fmt.Sprintf("Thanked **%s** (new rep: **%d**)\n", username, score)
}

func cooldownReply(remaining time.Duration) string {
	return fmt.Sprintf("You're still on cooldown. Wait %d seconds and try again!", seconds(remaining))
}

// seconds rounds up so a cooldown with 200ms left never reads "0 seconds".
func seconds(d time.Duration) int64 {
	return int64(math.Ceil(d.Seconds()))
}
