package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("connection reset")

	tests := []struct {
		name   string
		err    *Error
		typ    ErrorType
		status int
		public bool
	}{
		{"validation", ValidationError("bad input"), TypeValidation, http.StatusBadRequest, true},
		{"not found", NotFoundError("Could not find definition"), TypeNotFound, http.StatusNotFound, true},
		{"cooldown", CooldownError("wait"), TypeCooldown, http.StatusTooManyRequests, true},
		{"forbidden", ForbiddenError("nope"), TypeForbidden, http.StatusForbidden, true},
		{"internal", InternalError("store failed", cause), TypeInternal, http.StatusInternalServerError, false},
		{"external", ExternalError("api failed", cause), TypeExternal, http.StatusBadGateway, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.Equal(t, tt.public, tt.err.Public())
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.typ))
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ExternalError("wrapped", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root cause")
}

func TestWithContext(t *testing.T) {
	err := ExternalError("weather lookup failed", nil).
		WithContext("service", "open-meteo").
		WithField("location", "Berlin")

	assert.Equal(t, "open-meteo", err.Context["service"])
	assert.Equal(t, "Berlin", err.Context["location"])

	attrs := err.LogAttrs()
	assert.Contains(t, attrs, "service")
	assert.Contains(t, attrs, "Berlin")
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"public error speaks", CooldownError("You're still on cooldown"), "You're still on cooldown"},
		{"wrapped public error", fmt.Errorf("thank: %w", ForbiddenError("not allowed")), "not allowed"},
		{"external falls back", ExternalError("status 500", nil), "fallback"},
		{"plain error falls back", errors.New("boom"), "fallback"},
		{"empty message falls back", NotFoundError(""), "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "fallback"))
		})
	}
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("missing")
	assert.Same(t, original, AsStructuredError(fmt.Errorf("ctx: %w", original)))

	wrapped := AsStructuredError(errors.New("plain"))
	require.NotNil(t, wrapped)
	assert.Equal(t, TypeInternal, wrapped.Type)
	assert.Equal(t, "internal error", wrapped.ToResponse().Error)
}
