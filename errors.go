package cubegate

import (
	"errors"
	"fmt"
)

// Sentinel errors for the cubegate package.
var (
	// Validation errors
	ErrInvalidMove = errors.New("cubegate: invalid move")

	// State errors
	ErrConcurrentReset     = errors.New("cubegate: reset while a move is in progress")
	ErrInternalConsistency = errors.New("cubegate: internal consistency violated")
	ErrClosed              = errors.New("cubegate: engine closed")

	// Renderer errors
	ErrAnimationTimeout = errors.New("cubegate: animation did not complete in time")
)

// InvalidMoveError reports which part of a move descriptor was out of range.
type InvalidMoveError struct {
	Field string // axis, layer, direction or notation
	Value string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("cubegate: invalid move %s %q", e.Field, e.Value)
}

func (e *InvalidMoveError) Unwrap() error {
	return ErrInvalidMove
}

// ConsistencyError reports engine corruption: a broken layer count, a
// coordinate outside {-1,0,1}, or a sticker on an interior side. It is never
// a user input error.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return "cubegate: internal consistency violated: " + e.Reason
}

func (e *ConsistencyError) Unwrap() error {
	return ErrInternalConsistency
}

func consistencyf(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Reason: fmt.Sprintf(format, args...)}
}
