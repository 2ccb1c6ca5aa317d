package sable

import (
	"errors"
	"fmt"

	"github.com/sable-lang/sable/ffi"
)

// Error is a runtime failure surfaced from the ambient error indicator.
// It carries the runtime's error category and message.
type Error struct {
	Kind    ffi.ErrKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// DowncastError reports a failed cast to a typed view.
type DowncastError struct {
	Expected string
	Actual   string
}

func (e *DowncastError) Error() string {
	return fmt.Sprintf("cannot cast '%s' object to '%s'", e.Actual, e.Expected)
}

// IncomparableError reports that Compare exhausted its equality,
// less-than and greater-than tests without any of them answering true:
// the two objects define no order between them.
type IncomparableError struct {
	Left  string
	Right string
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("'%s' and '%s' objects are not comparable: all comparisons returned false",
		e.Left, e.Right)
}

// ErrNullHandle is returned when a runtime call produced a null handle
// without flagging an error. That combination indicates a bug on the
// runtime side rather than an ordinary runtime failure, so it is kept
// distinct from Error.
var ErrNullHandle = errors.New("sable: null handle with no error flagged")

// ErrNoIndicator is returned when a runtime call reported failure through
// its sentinel but left the error indicator clear. Like ErrNullHandle it
// points at a runtime-side bug, not an ordinary failure.
var ErrNoIndicator = errors.New("sable: failure sentinel with no error flagged")

// fetchError consumes the ambient error indicator: one fetch, one clear.
// Calling it when no error is flagged reports a runtime bookkeeping bug.
func fetchError(tok Token) error {
	tok.check()
	kind, msg := ffi.ErrFetch()
	return &Error{Kind: kind, Message: msg}
}

// errOnMinusOne translates the "-1 means failure" convention.
func errOnMinusOne(tok Token, rc int) error {
	if rc == -1 {
		return fetchError(tok)
	}
	return nil
}

// ternary translates the "-1/0/1" convention into a bool.
func ternary(tok Token, rc int) (bool, error) {
	if rc == -1 {
		return false, fetchError(tok)
	}
	return rc != 0, nil
}
