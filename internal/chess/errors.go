package chess

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Use errors.Is to classify a failure.
var (
	// ErrInvalidPosition indicates a coordinate outside the board or a malformed square.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrIllegalMove indicates a move the rules reject. Board and turn state are unchanged.
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvariantViolation indicates a broken setup, such as a missing king.
	// It is a programming error and must not be retried.
	ErrInvariantViolation = errors.New("invariant violation")
)

// MoveError wraps a rejected move with the match context it was rejected in.
type MoveError struct {
	Err    error
	Turn   int
	Player Color
	Source string
	Target string // empty when only the source was checked
	Reason string
}

func (e *MoveError) Error() string {
	parts := []string{fmt.Sprintf("turn %d", e.Turn), e.Player.String()}
	if e.Source != "" {
		move := e.Source
		if e.Target != "" {
			move += "-" + e.Target
		}
		parts = append(parts, move)
	}
	msg := strings.Join(parts, ", ")
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the sentinel for errors.Is and errors.As.
func (e *MoveError) Unwrap() error {
	return e.Err
}
