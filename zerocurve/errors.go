package zerocurve

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every InvalidInputError through errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a violated input invariant. Index is the position of
// the offending observation, or -1 when the whole input is at fault.
type InvalidInputError struct {
	Op     string
	Index  int
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	msg := e.Op + ": " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: observation %d: %s", e.Op, e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

func invalid(op string, index int, format string, args ...any) *InvalidInputError {
	return &InvalidInputError{Op: op, Index: index, Reason: fmt.Sprintf(format, args...)}
}
