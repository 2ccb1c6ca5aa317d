package sable

import "github.com/sable-lang/sable/ffi"

// Typed views are non-owning projections of an Object whose runtime kind
// has been checked. A view is valid for as long as the Object it was
// cast from; it allocates nothing and releases nothing.

// Str is a view of a runtime string object.
type Str struct {
	o *Object
}

// AsStr casts the object to a string view.
func (o *Object) AsStr(tok Token) (Str, error) {
	tok.check()
	if ffi.KindOf(o.h) != ffi.KindStr {
		return Str{}, &DowncastError{Expected: "str", Actual: ffi.TypeName(o.h)}
	}
	return Str{o: o}, nil
}

// Value returns the text of the string. The runtime's internal
// representation is Go text already, so decoding cannot fail once the
// cast has succeeded.
func (s Str) Value(tok Token) string {
	tok.check()
	v, _ := ffi.StringContents(s.o.h)
	return v
}

// Object returns the object this view projects.
func (s Str) Object() *Object { return s.o }

// Float is a view of a runtime float object.
type Float struct {
	o *Object
}

// AsFloat casts the object to a float view.
func (o *Object) AsFloat(tok Token) (Float, error) {
	tok.check()
	if ffi.KindOf(o.h) != ffi.KindFloat {
		return Float{}, &DowncastError{Expected: "float", Actual: ffi.TypeName(o.h)}
	}
	return Float{o: o}, nil
}

// Value returns the float's value.
func (f Float) Value(tok Token) float64 {
	tok.check()
	v, _ := ffi.FloatContents(f.o.h)
	return v
}

// Object returns the object this view projects.
func (f Float) Object() *Object { return f.o }

// Tuple is a view of a runtime tuple object.
type Tuple struct {
	o *Object
}

// AsTuple casts the object to a tuple view.
func (o *Object) AsTuple(tok Token) (Tuple, error) {
	tok.check()
	if ffi.KindOf(o.h) != ffi.KindTuple {
		return Tuple{}, &DowncastError{Expected: "tuple", Actual: ffi.TypeName(o.h)}
	}
	return Tuple{o: o}, nil
}

// Len returns the number of elements.
func (t Tuple) Len(tok Token) int {
	tok.check()
	return len(ffi.TupleItems(t.o.h))
}

// Get returns the element at index i as a new owned wrapper.
func (t Tuple) Get(tok Token, i int) (*Object, error) {
	return t.o.Item(tok, i)
}

// Object returns the object this view projects.
func (t Tuple) Object() *Object { return t.o }

// Dict is a view of a runtime dict object.
type Dict struct {
	o *Object
}

// AsDict casts the object to a dict view.
func (o *Object) AsDict(tok Token) (Dict, error) {
	tok.check()
	if ffi.KindOf(o.h) != ffi.KindDict {
		return Dict{}, &DowncastError{Expected: "dict", Actual: ffi.TypeName(o.h)}
	}
	return Dict{o: o}, nil
}

// Get returns the value stored under key.
func (d Dict) Get(tok Token, key any) (*Object, error) {
	return d.o.Item(tok, key)
}

// Set stores value under key.
func (d Dict) Set(tok Token, key, value any) error {
	return d.o.SetItem(tok, key, value)
}

// Len returns the number of entries.
func (d Dict) Len(tok Token) (int64, error) {
	return d.o.Len(tok)
}

// Object returns the object this view projects.
func (d Dict) Object() *Object { return d.o }

// Type is a view of a runtime type object.
type Type struct {
	o *Object
}

// AsType casts the object to a type view.
func (o *Object) AsType(tok Token) (Type, error) {
	tok.check()
	if ffi.KindOf(o.h) != ffi.KindType {
		return Type{}, &DowncastError{Expected: "type", Actual: ffi.TypeName(o.h)}
	}
	return Type{o: o}, nil
}

// Name returns the type's name.
func (t Type) Name(tok Token) string {
	tok.check()
	return ffi.TypeName(t.o.h)
}

// Object returns the object this view projects.
func (t Type) Object() *Object { return t.o }

// Iterator steps through a runtime iterator. Each step is a fallible
// runtime call; elements are never pre-fetched, and the underlying
// sequence may be unbounded.
type Iterator struct {
	obj *Object
}

// Next produces the next element. ok is false when the iterator is
// exhausted; a step can also fail outright, in which case err is set and
// ok is false.
func (it *Iterator) Next(tok Token) (obj *Object, ok bool, err error) {
	tok.check()
	h := ffi.IterNext(it.obj.h)
	if h == 0 {
		if ffi.ErrOccurred() {
			return nil, false, fetchError(tok)
		}
		return nil, false, nil
	}
	o, err := FromOwned(tok, h)
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// Collect drains the iterator into owned wrappers. The caller releases
// each element. Do not use on unbounded sequences.
func (it *Iterator) Collect(tok Token) ([]*Object, error) {
	var out []*Object
	for {
		o, ok, err := it.Next(tok)
		if err != nil {
			for _, e := range out {
				e.Release(tok)
			}
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, o)
	}
}

// Release drops the iterator's claim on the runtime iterator object.
func (it *Iterator) Release(tok Token) {
	it.obj.Release(tok)
}

// Object returns the underlying iterator object.
func (it *Iterator) Object() *Object { return it.obj }
