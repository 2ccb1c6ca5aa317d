package sable

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sable-lang/sable/ffi"
)

var (
	runtimeLock   = ffi.LockRuntime
	runtimeUnlock = ffi.UnlockRuntime
)

// Token proves that the holder is inside a critical section that owns the
// runtime lock. Every operation that touches a runtime handle takes one.
//
// Tokens are only obtainable through [AcquireRuntime]; the zero Token is
// dead and any attempt to use it panics. A Token dies when the guard that
// produced it is released, so it must never be stored past the critical
// section.
type Token struct {
	g *RuntimeGuard
}

// check enforces the liveness precondition. Violations are programming
// errors, not recoverable conditions.
func (t Token) check() {
	if t.g == nil || t.g.released {
		panic("sable: runtime operation without a live lock token")
	}
}

// RuntimeGuard represents a held critical section on the runtime lock.
// Always release it, on every exit path:
//
//	guard := sable.AcquireRuntime()
//	defer guard.Release()
//	tok := guard.Token()
type RuntimeGuard struct {
	released  bool
	outermost bool
}

// Token returns the lifetime token for this critical section.
func (g *RuntimeGuard) Token() Token {
	if g.released {
		panic("sable: Token on a released RuntimeGuard")
	}
	return Token{g: g}
}

// Release ends the critical section. Releasing twice is a no-op. The
// runtime lock itself is only dropped when the outermost guard on this
// goroutine releases.
func (g *RuntimeGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	if g.outermost {
		lockOwner.Store(0)
		runtimeUnlock()
	}
}

// lockOwner holds the id of the goroutine currently owning the runtime
// lock, or 0. It makes AcquireRuntime re-entrant: nested acquisitions on
// the owning goroutine succeed without touching the lock.
var lockOwner atomic.Uint64

// AcquireRuntime blocks until the runtime lock is available and returns a
// guard for the critical section. Nested calls on the same goroutine
// return immediately; their guards and tokens are valid until their own
// Release, and only the outermost Release unlocks.
func AcquireRuntime() *RuntimeGuard {
	id := goroutineID()
	if lockOwner.Load() == id {
		return &RuntimeGuard{}
	}
	runtimeLock()
	lockOwner.Store(id)
	return &RuntimeGuard{outermost: true}
}

// goroutineID extracts the current goroutine's id from its stack header.
// The header format ("goroutine N [running]:") is stable in practice and
// this is only consulted on lock acquisition, never per object call.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		panic("sable: cannot parse goroutine id: " + err.Error())
	}
	return id
}
