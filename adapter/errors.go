package adapter

import (
	"errors"
	"fmt"
)

// Error represents a classified failure from a collaborator call.
type Error struct {
	Adapter   string `json:"adapter"`   // Name of the adapter that failed
	Message   string `json:"message"`   // Human-readable message, safe to surface
	Permanent bool   `json:"permanent"` // True when retrying cannot succeed
	Cause     error  `json:"-"`         // Underlying vendor error, never surfaced verbatim
}

func (e *Error) Error() string {
	return fmt.Sprintf("adapter error in %s: %s", e.Adapter, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a retryable adapter error. Transport-level faults
// (collaborator unreachable, throttled) belong here.
func NewError(adapter, message string, cause error) *Error {
	return &Error{Adapter: adapter, Message: message, Cause: cause}
}

// NewPermanentError creates a non-retryable adapter error, used for
// malformed or rejected requests where a retry cannot succeed.
func NewPermanentError(adapter, message string, cause error) *Error {
	return &Error{Adapter: adapter, Message: message, Permanent: true, Cause: cause}
}

// IsPermanent reports whether err carries a permanent classification.
// Unclassified errors default to retryable, matching the policy that
// infrastructure faults are surfaced as retryable failures.
func IsPermanent(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Permanent
	}
	return false
}

// Reason extracts the human-readable failure message from an adapter error,
// falling back to the plain error text for unclassified errors.
func Reason(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
