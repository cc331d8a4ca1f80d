package deck

import (
	"errors"
	"fmt"
)

// ProtocolErrorCode identifies which turn protocol rule was broken.
type ProtocolErrorCode string

const (
	// ErrCodeDoubleQuery: a second uncommitted card was observed in one turn.
	ErrCodeDoubleQuery ProtocolErrorCode = "DOUBLE_QUERY"

	// ErrCodeNotObserved: commit or relocate without an observe this turn.
	ErrCodeNotObserved ProtocolErrorCode = "NOT_OBSERVED"

	// ErrCodeNotEligible: commit of a card whose value is not frontier+1.
	ErrCodeNotEligible ProtocolErrorCode = "NOT_ELIGIBLE"

	// ErrCodeIndexOutOfRange: an index outside [0, N).
	ErrCodeIndexOutOfRange ProtocolErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeHiddenValue: PeekValue on a card that is not committed.
	ErrCodeHiddenValue ProtocolErrorCode = "HIDDEN_VALUE"
)

// Sentinels for errors.Is matching. Only the Code is compared.
var (
	ErrDoubleQuery     = &ProtocolError{Code: ErrCodeDoubleQuery}
	ErrNotObserved     = &ProtocolError{Code: ErrCodeNotObserved}
	ErrNotEligible     = &ProtocolError{Code: ErrCodeNotEligible}
	ErrIndexOutOfRange = &ProtocolError{Code: ErrCodeIndexOutOfRange}
	ErrHiddenValue     = &ProtocolError{Code: ErrCodeHiddenValue}
)

// ProtocolError reports a turn protocol violation.
//
// These are programming errors in a strategy, never environmental failures.
// A game that hits one must be aborted.
type ProtocolError struct {
	// Code identifies the violated rule.
	Code ProtocolErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the offending card index, or -1 when not applicable.
	Index int

	// Turn is the engine turn counter at the time of the violation.
	Turn int
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if e.Index >= 0 && e.Message != "" {
		return fmt.Sprintf("%s: %s (index=%d, turn=%d)", e.Code, e.Message, e.Index, e.Turn)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (turn=%d)", e.Code, e.Message, e.Turn)
	}
	return string(e.Code)
}

// Is reports whether target is a *ProtocolError with the same Code.
func (e *ProtocolError) Is(target error) bool {
	pe, ok := target.(*ProtocolError)
	return ok && pe.Code == e.Code
}

// CodeOf returns the protocol error code carried by err, or "" if err is not
// (and does not wrap) a *ProtocolError.
func CodeOf(err error) ProtocolErrorCode {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

func (e *Engine) protocolError(code ProtocolErrorCode, index int, format string, args ...any) *ProtocolError {
	return &ProtocolError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Index:   index,
		Turn:    e.turn,
	}
}
