// Package errors provides structured errors that map to fixed user-facing replies and HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and reply selection.
type ErrorType string

const (
	// TypeValidation indicates invalid user input; the message is shown to the user
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates an empty lookup result; the message is shown to the user
	TypeNotFound ErrorType = "not_found"
	// TypeCooldown indicates the caller is rate limited; the message is shown to the user
	TypeCooldown ErrorType = "cooldown"
	// TypeForbidden indicates the action is not allowed for this caller or target
	TypeForbidden ErrorType = "forbidden"
	// TypeInternal indicates a local failure (store, renderer)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates an upstream API failure
	TypeExternal ErrorType = "external"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeCooldown:
		return http.StatusTooManyRequests
	case TypeForbidden:
		return http.StatusForbidden
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether Message is safe to show to a Discord user verbatim.
func (e *Error) Public() bool {
	switch e.Type {
	case TypeValidation, TypeNotFound, TypeCooldown, TypeForbidden:
		return true
	default:
		return false
	}
}

// UserMessage returns the reply text for err. Public errors speak for
// themselves; everything else collapses to fallback.
func UserMessage(err error, fallback string) string {
	var structuredErr *Error
	if errors.As(err, &structuredErr) && structuredErr.Public() && structuredErr.Message != "" {
		return structuredErr.Message
	}
	return fallback
}

// ValidationError creates a new validation error.
func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// NotFoundError creates a new not-found error.
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// CooldownError creates a new cooldown error.
func CooldownError(message string) *Error {
	return newError(TypeCooldown, message, nil)
}

// ForbiddenError creates a new forbidden error.
func ForbiddenError(message string) *Error {
	return newError(TypeForbidden, message, nil)
}

// InternalError creates a new internal error.
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// ExternalError creates a new external service error.
func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext (chainable).
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// LogAttrs flattens the error into slog key/value pairs.
func (e *Error) LogAttrs() []any {
	attrs := []any{"error_type", e.Type, "message", e.Message}
	if e.Cause != nil {
		attrs = append(attrs, "cause", e.Cause)
	}
	for k, v := range e.Context {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// ErrorResponse represents the JSON structure sent to ops HTTP clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal error", err)
}
