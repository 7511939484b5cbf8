package oracle

import "errors"

var (
	// ErrEmptyQuestion is returned when a question is empty or whitespace.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrWrongPhase is returned when an operation is not valid in the session's current phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
	// ErrSessionComplete is returned when a seventh line is recorded.
	ErrSessionComplete = errors.New("session already has six lines")
	// ErrCastInFlight is returned when a cast is attempted while another is pending.
	ErrCastInFlight = errors.New("a cast is already in progress")
	// ErrInvalidTotal is returned for line totals outside 6..9.
	ErrInvalidTotal = errors.New("line total must be 6, 7, 8 or 9")
	// ErrInvalidCoin is returned for coin values other than 2 or 3.
	ErrInvalidCoin = errors.New("coin value must be 2 or 3")
	// ErrNotResolved is returned when a result is requested before six lines exist.
	ErrNotResolved = errors.New("hexagram not resolved yet")
	// ErrUnknownKey is returned when a binary key has no table entry.
	ErrUnknownKey = errors.New("no table entry for key")
)
