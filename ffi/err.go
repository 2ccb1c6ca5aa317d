package ffi

import "fmt"

// ErrKind names a category of runtime error, mirroring the runtime's
// built-in error hierarchy.
type ErrKind string

const (
	TypeError      ErrKind = "TypeError"
	KeyError       ErrKind = "KeyError"
	AttributeError ErrKind = "AttributeError"
	IndexError     ErrKind = "IndexError"
	ValueError     ErrKind = "ValueError"
	RuntimeError   ErrKind = "RuntimeError"
)

// The ambient error indicator. Process-wide, owned by the runtime, and
// guarded by the runtime lock like everything else here. Failing calls
// set it; callers observe it through ErrOccurred and consume it exactly
// once through ErrFetch.
var (
	errSet  bool
	errKind ErrKind
	errMsg  string
)

// ErrOccurred reports whether the error indicator is currently set.
func ErrOccurred() bool { return errSet }

// ErrSet flags an error. Any previously flagged error is overwritten.
func ErrSet(kind ErrKind, msg string) {
	errSet = true
	errKind = kind
	errMsg = msg
	traceErr(kind, msg)
}

// ErrSetf flags an error with a formatted message.
func ErrSetf(kind ErrKind, format string, args ...any) {
	ErrSet(kind, fmt.Sprintf(format, args...))
}

// ErrFetch returns the flagged error and clears the indicator. If no
// error is flagged it returns RuntimeError with an empty message; callers
// are expected to check ErrOccurred first.
func ErrFetch() (ErrKind, string) {
	if !errSet {
		return RuntimeError, ""
	}
	kind, msg := errKind, errMsg
	ErrClear()
	return kind, msg
}

// ErrClear unconditionally clears the error indicator.
func ErrClear() {
	errSet = false
	errKind = ""
	errMsg = ""
}
