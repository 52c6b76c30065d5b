package speech

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for the language switching pipeline. All of them are handled
// where they occur; none reach the listener.
var (
	// Classification errors
	ErrClassifierUnavailable = errors.New("language classifier is not available")

	// Capability errors
	ErrCapabilityQueryUnsupported = errors.New("engine cannot enumerate its voices")
	ErrNoCompatibleVoice          = errors.New("no voice variant can render the language")

	// Sequence errors
	ErrMalformedSequence = errors.New("malformed speech sequence")
	ErrUnknownItem       = errors.New("unknown sequence item")
)

// IsRecoverableError checks if an error degrades locally instead of stopping
// speech output.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, ErrClassifierUnavailable),
		errors.Is(err, ErrCapabilityQueryUnsupported),
		errors.Is(err, ErrNoCompatibleVoice),
		errors.Is(err, ErrMalformedSequence),
		errors.Is(err, ErrUnknownItem):
		return true
	}
	return false
}

// Error provides detailed error information.
type Error struct {
	Err       error          // The underlying error
	Component string         // Component that generated the error
	Action    string         // Action being performed when error occurred
	Timestamp int64          // Unix timestamp when error occurred
	Context   map[string]any // Additional context
}

// NewError creates a new error with context.
func NewError(err error, component, action string) *Error {
	return &Error{
		Err:       err,
		Component: component,
		Action:    action,
		Timestamp: time.Now().Unix(),
		Context:   make(map[string]any),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "unknown speech error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component != "" {
		msg = e.Component + ": " + msg
	}
	if idx, ok := e.Context["index"]; ok {
		msg = fmt.Sprintf("%s at item %v", msg, idx)
	}
	if reason, ok := e.Context["reason"]; ok {
		msg = fmt.Sprintf("%s (%v)", msg, reason)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *Error) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
