package sable

import "github.com/sable-lang/sable/ffi"

// Object is a host-side claim on a runtime object. It pairs a handle with
// an ownership tag: an owned Object is responsible for exactly one
// reference-count unit and must be released exactly once; a borrowed
// Object never decrements and is only valid while whatever owns the
// underlying reference stays alive.
//
// Release with defer so the claim is dropped on every exit path:
//
//	obj, err := sable.FromOwned(tok, h)
//	if err != nil {
//	    return err
//	}
//	defer obj.Release(tok)
type Object struct {
	h     ffi.Handle
	owned bool
}

// FromOwned wraps a handle whose reference the producing call already
// counted — the common case for runtime calls that return new
// references. A null handle is translated per the runtime's convention:
// if the error indicator is set that error is surfaced, otherwise the
// failure is ErrNullHandle.
func FromOwned(tok Token, h ffi.Handle) (*Object, error) {
	tok.check()
	if h == 0 {
		if ffi.ErrOccurred() {
			return nil, fetchError(tok)
		}
		return nil, ErrNullHandle
	}
	return &Object{h: h, owned: true}, nil
}

// FromBorrowed wraps a handle the caller does not own. The reference
// count is incremented immediately, promoting the borrow to an owned
// claim so the wrapper's release is always balanced. Null handling
// matches FromOwned.
func FromBorrowed(tok Token, h ffi.Handle) (*Object, error) {
	tok.check()
	if h == 0 {
		if ffi.ErrOccurred() {
			return nil, fetchError(tok)
		}
		return nil, ErrNullHandle
	}
	ffi.IncRef(h)
	return &Object{h: h, owned: true}, nil
}

// borrowed wraps a handle without taking a reference. For singletons and
// short-lived aliases whose owner is known to outlive the wrapper.
func borrowed(h ffi.Handle) *Object {
	return &Object{h: h}
}

// Handle returns the raw runtime handle. The handle is only meaningful
// while the wrapper is live and the runtime lock is held.
func (o *Object) Handle() ffi.Handle { return o.h }

// CloneRef increments the reference count and returns a new owned
// wrapper for the same handle.
func (o *Object) CloneRef(tok Token) *Object {
	tok.check()
	ffi.IncRef(o.h)
	return &Object{h: o.h, owned: true}
}

// Release drops this wrapper's claim. For owned wrappers it decrements
// the reference count exactly once; repeated calls and calls on borrowed
// wrappers are no-ops.
func (o *Object) Release(tok Token) {
	if !o.owned || o.h == 0 {
		return
	}
	tok.check()
	ffi.DecRef(o.h)
	o.h = 0
}

// None returns a borrowed wrapper for the runtime's None singleton.
func None(tok Token) *Object {
	tok.check()
	return borrowed(ffi.None())
}
