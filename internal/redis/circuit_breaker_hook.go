package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/nano/internal/metrics"
	goredis "github.com/redis/go-redis/v9"
)

const (
	breakerFailureThreshold = 5
	breakerDelay            = 30 * time.Second
	cacheTTL                = 5 * time.Minute
)

// CircuitBreakerHook implements redis.Hook to fail fast while Redis is down.
// Successful HGET replies are remembered so preference lookups keep working
// from cache while the circuit is open.
type CircuitBreakerHook struct {
	cb    circuitbreaker.CircuitBreaker[any]
	clock clockwork.Clock

	mu    sync.RWMutex
	cache map[string]cachedValue
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

type cachedValue struct {
	data     string
	storedAt time.Time
}

// NewCircuitBreakerHook opens after 5 consecutive failures and probes again after 30s.
func NewCircuitBreakerHook(clock clockwork.Clock) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(breakerFailureThreshold).
		WithDelay(breakerDelay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.CircuitBreakerStateChanges.WithLabelValues("redis", e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues("redis").Set(stateToFloat(e.NewState))
		}).
		Build()

	return &CircuitBreakerHook{
		cb:    cb,
		clock: clock,
		cache: make(map[string]cachedValue),
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, err
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return h.fallback(cmd)
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return err
		}

		h.cb.RecordSuccess()
		h.remember(cmd)
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return err
		}
		h.cb.RecordSuccess()
		return err
	}
}

// fallback serves HGET from cache while the circuit is open; everything else fails fast.
func (h *CircuitBreakerHook) fallback(cmd goredis.Cmder) error {
	if cmd.Name() == "hget" {
		if c, ok := cmd.(*goredis.StringCmd); ok {
			if value, ok := h.lookup(cacheKey(cmd)); ok {
				slog.Debug("Circuit breaker open, serving from cache", "args", cmd.Args())
				c.SetVal(value)
				return nil
			}
		}
	}
	err := fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
	cmd.SetErr(err)
	return err
}

func (h *CircuitBreakerHook) remember(cmd goredis.Cmder) {
	if cmd.Name() != "hget" {
		return
	}
	c, ok := cmd.(*goredis.StringCmd)
	if !ok || c.Err() != nil {
		return
	}

	h.mu.Lock()
	h.cache[cacheKey(cmd)] = cachedValue{data: c.Val(), storedAt: h.clock.Now()}
	h.mu.Unlock()
}

func (h *CircuitBreakerHook) lookup(key string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cached, ok := h.cache[key]
	if !ok || h.clock.Since(cached.storedAt) > cacheTTL {
		return "", false
	}
	return cached.data, true
}

func cacheKey(cmd goredis.Cmder) string {
	parts := make([]string, 0, len(cmd.Args()))
	for _, arg := range cmd.Args() {
		parts = append(parts, fmt.Sprint(arg))
	}
	return strings.Join(parts, "\x00")
}

// State returns the current state of the circuit breaker.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
