package sable

import "github.com/sable-lang/sable/ffi"

// CompareOp selects the operator for RichCompare.
type CompareOp = ffi.CompareOp

// Comparison operators, in the runtime's own numbering.
const (
	Lt = ffi.OpLt
	Le = ffi.OpLe
	Eq = ffi.OpEq
	Ne = ffi.OpNe
	Gt = ffi.OpGt
	Ge = ffi.OpGe
)

// Ordering is the outcome of a three-way comparison.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// HasAttr reports whether the object has the named attribute. name is
// any host value convertible to a runtime string.
func (o *Object) HasAttr(tok Token, name any) (bool, error) {
	tok.check()
	n, err := ToObject(tok, name)
	if err != nil {
		return false, err
	}
	defer n.Release(tok)
	return ffi.HasAttr(o.h, n.h) != 0, nil
}

// Attr retrieves an attribute value.
func (o *Object) Attr(tok Token, name any) (*Object, error) {
	tok.check()
	n, err := ToObject(tok, name)
	if err != nil {
		return nil, err
	}
	defer n.Release(tok)
	return FromOwned(tok, ffi.GetAttr(o.h, n.h))
}

// SetAttr sets an attribute value.
func (o *Object) SetAttr(tok Token, name, value any) error {
	tok.check()
	n, err := ToObject(tok, name)
	if err != nil {
		return err
	}
	defer n.Release(tok)
	v, err := ToObject(tok, value)
	if err != nil {
		return err
	}
	defer v.Release(tok)
	return errOnMinusOne(tok, ffi.SetAttr(o.h, n.h, v.h))
}

// DelAttr deletes an attribute.
func (o *Object) DelAttr(tok Token, name any) error {
	tok.check()
	n, err := ToObject(tok, name)
	if err != nil {
		return err
	}
	defer n.Release(tok)
	return errOnMinusOne(tok, ffi.DelAttr(o.h, n.h))
}

// Compare synthesizes a total-order outcome from three pairwise rich
// comparisons, in this fixed order: equality, then less-than, then
// greater-than. A failing comparison call short-circuits with its error.
// If all three answer false the objects define no order between them and
// the result is an *IncomparableError.
func (o *Object) Compare(tok Token, other any) (Ordering, error) {
	tok.check()
	b, err := ToObject(tok, other)
	if err != nil {
		return Equal, err
	}
	defer b.Release(tok)

	for _, step := range [...]struct {
		op  CompareOp
		out Ordering
	}{{Eq, Equal}, {Lt, Less}, {Gt, Greater}} {
		switch ffi.RichCompareBool(o.h, b.h, step.op) {
		case 1:
			return step.out, nil
		case -1:
			return Equal, fetchError(tok)
		}
	}
	return Equal, &IncomparableError{
		Left:  ffi.TypeName(o.h),
		Right: ffi.TypeName(b.h),
	}
}

// RichCompare applies a single comparison operator and returns the
// result object unconverted: rich comparison may legally produce
// non-boolean values, so interpretation is left to the caller.
func (o *Object) RichCompare(tok Token, other any, op CompareOp) (*Object, error) {
	tok.check()
	b, err := ToObject(tok, other)
	if err != nil {
		return nil, err
	}
	defer b.Release(tok)
	return FromOwned(tok, ffi.RichCompare(o.h, b.h, op))
}

// Repr computes the canonical string representation of the object.
func (o *Object) Repr(tok Token) (*Object, error) {
	tok.check()
	return FromOwned(tok, ffi.Repr(o.h))
}

// Str computes the informal string representation of the object.
func (o *Object) Str(tok Token) (*Object, error) {
	tok.check()
	return FromOwned(tok, ffi.Str(o.h))
}

// IsCallable reports whether the object can be called. Never fails.
func (o *Object) IsCallable(tok Token) bool {
	tok.check()
	return ffi.CallableCheck(o.h) != 0
}

// Call invokes the object with positional arguments and optional keyword
// arguments (nil for none). Each argument is any host value convertible
// to a runtime object.
func (o *Object) Call(tok Token, args []any, kwargs map[string]any) (*Object, error) {
	tok.check()
	t, err := argsTuple(tok, args)
	if err != nil {
		return nil, err
	}
	defer t.Release(tok)
	kw, err := kwargsDict(tok, kwargs)
	if err != nil {
		return nil, err
	}
	var kwh ffi.Handle
	if kw != nil {
		defer kw.Release(tok)
		kwh = kw.h
	}
	return FromOwned(tok, ffi.Call(o.h, t.h, kwh))
}

// CallMethod resolves the named attribute and calls it. If attribute
// resolution fails, the call fails with that same error; no separate
// "method not found" failure is synthesized.
func (o *Object) CallMethod(tok Token, name string, args []any, kwargs map[string]any) (*Object, error) {
	tok.check()
	m, err := o.Attr(tok, name)
	if err != nil {
		return nil, err
	}
	defer m.Release(tok)
	return m.Call(tok, args, kwargs)
}

// Hash returns the object's hash. The runtime reserves -1 as its failure
// sentinel, but -1 is also a legitimate hash value, so the error
// indicator decides which it was.
func (o *Object) Hash(tok Token) (int64, error) {
	tok.check()
	v := ffi.Hash(o.h)
	if v == -1 && ffi.ErrOccurred() {
		return 0, fetchError(tok)
	}
	return v, nil
}

// IsTrue reports the truth of the object.
func (o *Object) IsTrue(tok Token) (bool, error) {
	tok.check()
	return ternary(tok, ffi.IsTrue(o.h))
}

// IsNone reports whether the object is the None singleton. Identity
// comparison; never fails.
func (o *Object) IsNone(tok Token) bool {
	tok.check()
	return o.h == ffi.None()
}

// Len returns the length of a sized object. Unlike a hash, -1 is never a
// legitimate length, so the sentinel always means failure here.
func (o *Object) Len(tok Token) (int64, error) {
	tok.check()
	v := ffi.Size(o.h)
	if v == -1 {
		if !ffi.ErrOccurred() {
			return 0, ErrNoIndicator
		}
		return 0, fetchError(tok)
	}
	return v, nil
}

// Item returns the value for a key or index.
func (o *Object) Item(tok Token, key any) (*Object, error) {
	tok.check()
	k, err := ToObject(tok, key)
	if err != nil {
		return nil, err
	}
	defer k.Release(tok)
	return FromOwned(tok, ffi.GetItem(o.h, k.h))
}

// SetItem stores a value under a key.
func (o *Object) SetItem(tok Token, key, value any) error {
	tok.check()
	k, err := ToObject(tok, key)
	if err != nil {
		return err
	}
	defer k.Release(tok)
	v, err := ToObject(tok, value)
	if err != nil {
		return err
	}
	defer v.Release(tok)
	return errOnMinusOne(tok, ffi.SetItem(o.h, k.h, v.h))
}

// DelItem deletes the value under a key.
func (o *Object) DelItem(tok Token, key any) error {
	tok.check()
	k, err := ToObject(tok, key)
	if err != nil {
		return err
	}
	defer k.Release(tok)
	return errOnMinusOne(tok, ffi.DelItem(o.h, k.h))
}

// Iter obtains an iterator over the object. Elements are produced
// lazily; each step is its own fallible runtime call.
func (o *Object) Iter(tok Token) (*Iterator, error) {
	tok.check()
	it, err := FromOwned(tok, ffi.GetIter(o.h))
	if err != nil {
		return nil, err
	}
	return &Iterator{obj: it}, nil
}

// Type returns a view of the object's runtime type. Never fails.
func (o *Object) Type(tok Token) Type {
	tok.check()
	return Type{o: borrowed(ffi.TypeOf(o.h))}
}

// RefCount returns the raw reference count. Diagnostic only: the value
// can be stale the moment it is read if other claims exist.
func (o *Object) RefCount(tok Token) int64 {
	tok.check()
	return ffi.RefCount(o.h)
}

func argsTuple(tok Token, args []any) (*Object, error) {
	handles := make([]ffi.Handle, len(args))
	wrappers := make([]*Object, len(args))
	defer func() {
		for _, w := range wrappers {
			if w != nil {
				w.Release(tok)
			}
		}
	}()
	for i, a := range args {
		w, err := ToObject(tok, a)
		if err != nil {
			return nil, err
		}
		wrappers[i] = w
		handles[i] = w.h
	}
	return FromOwned(tok, ffi.NewTuple(handles...))
}

func kwargsDict(tok Token, kwargs map[string]any) (*Object, error) {
	if kwargs == nil {
		return nil, nil
	}
	d, err := FromOwned(tok, ffi.NewDict())
	if err != nil {
		return nil, err
	}
	for k, v := range kwargs {
		if err := d.SetItem(tok, k, v); err != nil {
			d.Release(tok)
			return nil, err
		}
	}
	return d, nil
}
