package sable_test

import (
	"errors"
	"testing"

	"github.com/sable-lang/sable"
	"github.com/sable-lang/sable/ffi"
)

func TestStringRoundTrip(t *testing.T) {
	tok := acquire(t)

	for _, s := range []string{"", "plain", "with \"quotes\"", "héllo, wörld", "line\nbreak", "日本語"} {
		obj := mustObject(t, tok, s)
		got, err := sable.Extract[string](tok, obj)
		if err != nil {
			t.Fatalf("Extract(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestNumericRoundTrip(t *testing.T) {
	tok := acquire(t)

	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		obj := mustObject(t, tok, v)
		got, err := sable.Extract[int64](tok, obj)
		if err != nil || got != v {
			t.Errorf("int round trip %d -> (%d, %v)", v, got, err)
		}
	}

	for _, v := range []float64{0, 1.5, -2.25} {
		obj := mustObject(t, tok, v)
		got, err := sable.Extract[float64](tok, obj)
		if err != nil || got != v {
			t.Errorf("float round trip %g -> (%g, %v)", v, got, err)
		}
	}
}

func TestToObjectWidths(t *testing.T) {
	tok := acquire(t)

	cases := []struct {
		v    any
		want int64
	}{
		{int(7), 7},
		{int8(-8), -8},
		{int16(16), 16},
		{int32(-32), -32},
		{uint8(8), 8},
		{uint16(16), 16},
		{uint32(32), 32},
		{uint64(64), 64},
	}
	for _, tc := range cases {
		obj := mustObject(t, tok, tc.v)
		got, err := sable.Extract[int64](tok, obj)
		if err != nil || got != tc.want {
			t.Errorf("ToObject(%T %v) = (%d, %v)", tc.v, tc.v, got, err)
		}
	}
}

func TestToObjectNil(t *testing.T) {
	tok := acquire(t)

	obj, err := sable.ToObject(tok, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !obj.IsNone(tok) {
		t.Fatal("ToObject(nil) is not None")
	}
}

func TestToObjectBool(t *testing.T) {
	tok := acquire(t)

	obj := mustObject(t, tok, true)
	got, err := sable.Extract[bool](tok, obj)
	if err != nil || !got {
		t.Fatalf("Extract[bool] = (%v, %v)", got, err)
	}
}

func TestToObjectSliceAndMap(t *testing.T) {
	tok := acquire(t)

	tup := mustObject(t, tok, []int64{1, 2, 3})
	if ffi.KindOf(tup.Handle()) != ffi.KindTuple {
		t.Fatalf("slice converted to %v", ffi.KindOf(tup.Handle()))
	}
	n, err := tup.Len(tok)
	if err != nil || n != 3 {
		t.Fatalf("tuple len = (%d, %v)", n, err)
	}

	d := mustObject(t, tok, map[string]int64{"a": 1})
	if ffi.KindOf(d.Handle()) != ffi.KindDict {
		t.Fatalf("map converted to %v", ffi.KindOf(d.Handle()))
	}
	v, err := d.Item(tok, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer v.Release(tok)
	if got, _ := sable.Extract[int64](tok, v); got != 1 {
		t.Fatalf("d[a] = %d", got)
	}
}

func TestToObjectAliasesObjects(t *testing.T) {
	tok := acquire(t)

	obj := mustObject(t, tok, int64(4))
	rc := obj.RefCount(tok)

	alias, err := sable.ToObject(tok, obj)
	if err != nil {
		t.Fatal(err)
	}
	if alias.Handle() != obj.Handle() {
		t.Fatal("alias wraps a different handle")
	}
	if got := obj.RefCount(tok); got != rc {
		t.Fatalf("aliasing changed refcount %d -> %d", rc, got)
	}
	alias.Release(tok) // no-op for a borrowed alias
	if got := obj.RefCount(tok); got != rc {
		t.Fatalf("alias release changed refcount %d -> %d", rc, got)
	}
}

func TestToObjectUnsupported(t *testing.T) {
	tok := acquire(t)

	for _, v := range []any{struct{ X int }{1}, make(chan int), func() {}, map[int]string{1: "x"}} {
		if _, err := sable.ToObject(tok, v); err == nil {
			t.Errorf("ToObject(%T) succeeded, want error", v)
		}
	}
}

func TestExtractDowncast(t *testing.T) {
	tok := acquire(t)
	n := mustObject(t, tok, int64(1))

	_, err := sable.Extract[string](tok, n)
	var dc *sable.DowncastError
	if !errors.As(err, &dc) {
		t.Fatalf("err = %v, want *DowncastError", err)
	}
	if dc.Expected != "str" || dc.Actual != "int" {
		t.Fatalf("downcast error = %+v", dc)
	}

	s := mustObject(t, tok, "x")
	if _, err := sable.Extract[int64](tok, s); err == nil {
		t.Fatal("Extract[int64] of str succeeded")
	}
}

func TestExtractFloatAcceptsInt(t *testing.T) {
	tok := acquire(t)
	n := mustObject(t, tok, int64(3))

	f, err := sable.Extract[float64](tok, n)
	if err != nil || f != 3.0 {
		t.Fatalf("Extract[float64](int) = (%g, %v)", f, err)
	}
}

func TestTypedViews(t *testing.T) {
	tok := acquire(t)

	s := mustObject(t, tok, "abc")
	sv, err := s.AsStr(tok)
	if err != nil {
		t.Fatal(err)
	}
	if sv.Value(tok) != "abc" {
		t.Fatalf("Str view = %q", sv.Value(tok))
	}
	if _, err := s.AsTuple(tok); err == nil {
		t.Fatal("AsTuple on str succeeded")
	}

	f := mustObject(t, tok, 2.5)
	fv, err := f.AsFloat(tok)
	if err != nil {
		t.Fatal(err)
	}
	if fv.Value(tok) != 2.5 {
		t.Fatalf("Float view = %g", fv.Value(tok))
	}

	tup := mustObject(t, tok, []any{int64(5)})
	tv, err := tup.AsTuple(tok)
	if err != nil {
		t.Fatal(err)
	}
	if tv.Len(tok) != 1 {
		t.Fatalf("Tuple view len = %d", tv.Len(tok))
	}
	el, err := tv.Get(tok, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer el.Release(tok)
	if v, _ := sable.Extract[int64](tok, el); v != 5 {
		t.Fatalf("tuple[0] = %d", v)
	}
}
