package sable_test

import (
	"fmt"

	"github.com/sable-lang/sable"
	"github.com/sable-lang/sable/ffi"
)

// Example walks the object protocol end to end: build a tuple, inspect
// it, iterate it, and compare two ints.
func Example() {
	guard := sable.AcquireRuntime()
	defer guard.Release()
	tok := guard.Token()

	tup, err := sable.ToObject(tok, []any{int64(1), 2.5, "three"})
	if err != nil {
		panic(err)
	}
	defer tup.Release(tok)

	r, err := tup.Repr(tok)
	if err != nil {
		panic(err)
	}
	s, _ := sable.Extract[string](tok, r)
	r.Release(tok)
	fmt.Println(s)

	n, err := tup.Len(tok)
	if err != nil {
		panic(err)
	}
	fmt.Println("len", n)

	it, err := tup.Iter(tok)
	if err != nil {
		panic(err)
	}
	defer it.Release(tok)
	for {
		el, ok, err := it.Next(tok)
		if err != nil {
			panic(err)
		}
		if !ok {
			break
		}
		str, err := el.Str(tok)
		if err != nil {
			panic(err)
		}
		v, _ := sable.Extract[string](tok, str)
		str.Release(tok)
		el.Release(tok)
		fmt.Println(v)
	}

	one, err := sable.ToObject(tok, int64(1))
	if err != nil {
		panic(err)
	}
	defer one.Release(tok)
	ord, err := one.Compare(tok, int64(2))
	if err != nil {
		panic(err)
	}
	fmt.Println("1 vs 2:", ord)

	// Output:
	// (1, 2.5, "three")
	// len 3
	// 1
	// 2.5
	// three
	// 1 vs 2: less
}

// ExampleObject_CallMethod attaches a host function to a namespace and
// calls it through attribute lookup.
func ExampleObject_CallMethod() {
	guard := sable.AcquireRuntime()
	defer guard.Release()
	tok := guard.Token()

	ns, err := sable.FromOwned(tok, ffi.NewNamespace())
	if err != nil {
		panic(err)
	}
	defer ns.Release(tok)

	double, err := sable.FromOwned(tok, ffi.NewFunc("double", func(args, kwargs ffi.Handle) ffi.Handle {
		items := ffi.TupleItems(args)
		if len(items) != 1 {
			ffi.ErrSet(ffi.TypeError, "double() takes 1 argument")
			return 0
		}
		v, ok := ffi.IntContents(items[0])
		if !ok {
			ffi.ErrSet(ffi.TypeError, "double() argument must be int")
			return 0
		}
		return ffi.NewInt(v * 2)
	}))
	if err != nil {
		panic(err)
	}
	defer double.Release(tok)
	if err := ns.SetAttr(tok, "double", double); err != nil {
		panic(err)
	}

	out, err := ns.CallMethod(tok, "double", []any{int64(21)}, nil)
	if err != nil {
		panic(err)
	}
	defer out.Release(tok)
	v, err := sable.Extract[int64](tok, out)
	if err != nil {
		panic(err)
	}
	fmt.Println(v)

	// Output:
	// 42
}
