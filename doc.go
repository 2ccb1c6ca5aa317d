// Package sable provides a safe Go layer over the Sable object runtime.
//
// The runtime (package ffi) is an unmanaged, reference-counted object
// system with C-style failure conventions: sentinel return values, null
// handles, and a process-wide error indicator. This package wraps that
// surface so host code cannot leak references, touch the runtime without
// its global lock, or mis-read its error signals.
//
// # Quick start
//
//	guard := sable.AcquireRuntime()
//	defer guard.Release()
//	tok := guard.Token()
//
//	obj, err := sable.ToObject(tok, "hello")
//	if err != nil {
//	    return err
//	}
//	defer obj.Release(tok)
//
//	n, _ := obj.Len(tok)      // 5
//	s, _ := sable.Extract[string](tok, obj)
//
// # Locking
//
// Every operation takes a [Token], obtainable only from [AcquireRuntime].
// The token proves the runtime lock is held; using a dead or zero token
// panics, since that is a programming error rather than a runtime
// failure. Acquisition is re-entrant per goroutine.
//
// # Ownership
//
// An [Object] is a counted claim on a runtime handle. Constructors
// returning new references are wrapped with [FromOwned]; borrowed
// handles are promoted with [FromBorrowed]. Release every owned wrapper
// exactly once, with defer, so the claim is dropped on error paths too.
//
// # Errors
//
// All runtime failures surface as *[Error] carrying the runtime's error
// category and message, fetched from the ambient indicator exactly once
// and cleared so later calls cannot observe it as stale state. Failed
// casts yield *[DowncastError], three-way comparison with no defined
// order yields *[IncomparableError], and a null handle with no flagged
// error yields [ErrNullHandle].
package sable
