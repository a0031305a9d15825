package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("connection refused")

func failing(ctx context.Context, cmd goredis.Cmder) error { return errConnRefused }

func TestCircuitBreakerHook_NormalOperation(t *testing.T) {
	hook := NewCircuitBreakerHook(clockwork.NewFakeClock())
	ctx := context.Background()

	process := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error { return nil })
	for range 10 {
		require.NoError(t, process(ctx, goredis.NewStringCmd(ctx, "get", "key")))
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_NilIsNotAFailure(t *testing.T) {
	hook := NewCircuitBreakerHook(clockwork.NewFakeClock())
	ctx := context.Background()

	process := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error { return goredis.Nil })
	for range 10 {
		err := process(ctx, goredis.NewStringCmd(ctx, "hget", "math_markup", "someone"))
		assert.ErrorIs(t, err, goredis.Nil)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.State())
}

func TestCircuitBreakerHook_OpensAfterConsecutiveFailures(t *testing.T) {
	hook := NewCircuitBreakerHook(clockwork.NewFakeClock())
	ctx := context.Background()

	process := hook.ProcessHook(failing)
	for range breakerFailureThreshold {
		err := process(ctx, goredis.NewIntCmd(ctx, "zincrby", "reputation", 1, "someone"))
		assert.ErrorIs(t, err, errConnRefused)
	}
	assert.Equal(t, circuitbreaker.OpenState, hook.State())

	called := false
	process = hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
		called = true
		return nil
	})
	err := process(ctx, goredis.NewIntCmd(ctx, "zincrby", "reputation", 1, "someone"))
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.False(t, called, "open circuit must not reach redis")
}

func TestCircuitBreakerHook_ServesCachedHGetWhileOpen(t *testing.T) {
	clock := clockwork.NewFakeClock()
	hook := NewCircuitBreakerHook(clock)
	ctx := context.Background()

	ok := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
		cmd.(*goredis.StringCmd).SetVal("typst")
		return nil
	})
	require.NoError(t, ok(ctx, goredis.NewStringCmd(ctx, "hget", "math_markup", "alice")))

	fail := hook.ProcessHook(failing)
	for range breakerFailureThreshold {
		_ = fail(ctx, goredis.NewStringCmd(ctx, "get", "other"))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.State())

	cmd := goredis.NewStringCmd(ctx, "hget", "math_markup", "alice")
	require.NoError(t, fail(ctx, cmd))
	assert.Equal(t, "typst", cmd.Val())

	miss := goredis.NewStringCmd(ctx, "hget", "math_markup", "bob")
	assert.ErrorIs(t, fail(ctx, miss), circuitbreaker.ErrOpen)

	clock.Advance(cacheTTL + 1)
	stale := goredis.NewStringCmd(ctx, "hget", "math_markup", "alice")
	assert.ErrorIs(t, fail(ctx, stale), circuitbreaker.ErrOpen)
}

func TestCircuitBreakerHook_PipelineFailsFastWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook(clockwork.NewFakeClock())
	ctx := context.Background()

	fail := hook.ProcessHook(failing)
	for range breakerFailureThreshold {
		_ = fail(ctx, goredis.NewStringCmd(ctx, "get", "k"))
	}

	pipeline := hook.ProcessPipelineHook(func(ctx context.Context, cmds []goredis.Cmder) error { return nil })
	err := pipeline(ctx, []goredis.Cmder{goredis.NewFloatCmd(ctx, "zscore", "reputation", "a")})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}
