package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can map them to a boundary
// response without string matching.
type ErrorKind string

const (
	// KindInvalidPayload marks a malformed evaluation request. Not recoverable.
	KindInvalidPayload ErrorKind = "invalid_payload"
	// KindMissingField marks a feedback request with missing or invalid fields.
	KindMissingField ErrorKind = "missing_field"
	// KindStateIO marks a failed state save: the preceding mutation is not durable.
	KindStateIO ErrorKind = "state_io"
)

// #region error
// Error is the engine's typed failure.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an engine Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind == kind
}
// #endregion error
