package sable_test

import (
	"errors"
	"testing"

	"github.com/sable-lang/sable"
	"github.com/sable-lang/sable/ffi"
)

func acquire(t *testing.T) sable.Token {
	t.Helper()
	guard := sable.AcquireRuntime()
	t.Cleanup(guard.Release)
	return guard.Token()
}

func TestFromOwnedNull(t *testing.T) {
	tok := acquire(t)

	_, err := sable.FromOwned(tok, 0)
	if !errors.Is(err, sable.ErrNullHandle) {
		t.Fatalf("null without indicator: err = %v, want ErrNullHandle", err)
	}
}

func TestFromOwnedNullWithIndicator(t *testing.T) {
	tok := acquire(t)

	ffi.ErrSet(ffi.ValueError, "boom")
	_, err := sable.FromOwned(tok, 0)
	var e *sable.Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want *sable.Error", err)
	}
	if e.Kind != ffi.ValueError || e.Message != "boom" {
		t.Fatalf("err = %+v", e)
	}
	if ffi.ErrOccurred() {
		t.Fatal("indicator not consumed")
	}
}

func TestFromBorrowedIncrements(t *testing.T) {
	tok := acquire(t)

	h := ffi.NewInt(5)
	defer ffi.DecRef(h)

	obj, err := sable.FromBorrowed(tok, h)
	if err != nil {
		t.Fatal(err)
	}
	if got := ffi.RefCount(h); got != 2 {
		t.Fatalf("refcount after FromBorrowed = %d, want 2", got)
	}
	obj.Release(tok)
	if got := ffi.RefCount(h); got != 1 {
		t.Fatalf("refcount after Release = %d, want 1", got)
	}
}

func TestCloneRefConservation(t *testing.T) {
	tok := acquire(t)

	obj, err := sable.ToObject(tok, int64(9))
	if err != nil {
		t.Fatal(err)
	}
	h := obj.Handle()

	clones := make([]*sable.Object, 0, 8)
	for i := 0; i < 8; i++ {
		clones = append(clones, obj.CloneRef(tok))
	}
	if got := ffi.RefCount(h); got != 9 {
		t.Fatalf("refcount with 8 clones = %d, want 9", got)
	}
	for _, c := range clones {
		c.Release(tok)
	}
	if got := ffi.RefCount(h); got != 1 {
		t.Fatalf("refcount after releasing clones = %d, want 1", got)
	}
	obj.Release(tok)
}

func TestReleaseTwice(t *testing.T) {
	tok := acquire(t)

	a, _ := sable.ToObject(tok, "x")
	b := a.CloneRef(tok)
	h := a.Handle()

	a.Release(tok)
	a.Release(tok) // second release must not decrement again
	if got := ffi.RefCount(h); got != 1 {
		t.Fatalf("refcount = %d, want 1", got)
	}
	b.Release(tok)
}

func TestNoneIsBorrowed(t *testing.T) {
	tok := acquire(t)

	before := ffi.RefCount(ffi.None())
	n := sable.None(tok)
	n.Release(tok)
	if got := ffi.RefCount(ffi.None()); got != before {
		t.Fatalf("None refcount changed: %d -> %d", before, got)
	}
}

func TestNoLeaksAcrossWrapperLifecycle(t *testing.T) {
	tok := acquire(t)

	before := ffi.LiveObjects()
	obj, err := sable.ToObject(tok, []any{int64(1), "two", 3.0})
	if err != nil {
		t.Fatal(err)
	}
	r, err := obj.Repr(tok)
	if err != nil {
		t.Fatal(err)
	}
	r.Release(tok)
	obj.Release(tok)
	if got := ffi.LiveObjects(); got != before {
		t.Fatalf("live objects %d -> %d", before, got)
	}
}
