package bot

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

// UserRateLimiter limits how fast a single user can run commands.
// Uses token bucket algorithm via golang.org/x/time/rate.
type UserRateLimiter struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	limiters  map[string]*rateLimiterEntry
	rate      rate.Limit
	burst     int
	cleanupAt time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter creates a limiter allowing commandsPerSecond sustained
// with bursts of up to burst commands.
func NewUserRateLimiter(clock clockwork.Clock, commandsPerSecond float64, burst int) *UserRateLimiter {
	return &UserRateLimiter{
		clock:     clock,
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Limit(commandsPerSecond),
		burst:     burst,
		cleanupAt: clock.Now().Add(limiterCleanupInterval),
	}
}

// Allow reports whether userID may run a command now.
func (l *UserRateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.cleanupAt) {
		l.cleanup(now)
		l.cleanupAt = now.Add(limiterCleanupInterval)
	}

	entry, exists := l.limiters[userID]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[userID] = entry
	}

	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// cleanup removes limiters idle for longer than limiterIdleTimeout.
// Must be called with mu held.
func (l *UserRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdleTimeout)
	for id, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
		}
	}
}

// ActiveLimiters returns the number of users currently tracked.
func (l *UserRateLimiter) ActiveLimiters() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RenderSlots bounds the number of concurrent typst processes.
// Uses atomic operations for lock-free counting.
type RenderSlots struct {
	current atomic.Int64
	max     int64
}

func NewRenderSlots(max int64) *RenderSlots {
	return &RenderSlots{max: max}
}

// Acquire returns false when every slot is taken.
func (s *RenderSlots) Acquire() bool {
	for {
		current := s.current.Load()
		if current >= s.max {
			return false
		}
		if s.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (s *RenderSlots) Release() {
	s.current.Add(-1)
}

func (s *RenderSlots) Current() int64 {
	return s.current.Load()
}
