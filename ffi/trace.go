package ffi

import "github.com/rs/zerolog"

// tracer receives reference-count transitions and error-indicator sets at
// trace level. Disabled by default; sable-probe enables it when its
// config asks for one.
var tracer = zerolog.Nop()

// SetTraceLogger installs a logger for runtime tracing. Pass
// zerolog.Nop() to disable again. Must be called while holding the
// runtime lock, like every other function here.
func SetTraceLogger(l zerolog.Logger) { tracer = l }

func traceRef(op string, h Handle, o *object) {
	tracer.Trace().
		Str("op", op).
		Uint32("handle", uint32(h)).
		Str("kind", o.kind.String()).
		Int64("refs", o.refs).
		Msg("refcount")
}

func traceErr(kind ErrKind, msg string) {
	tracer.Trace().
		Str("kind", string(kind)).
		Str("msg", msg).
		Msg("error indicator set")
}
