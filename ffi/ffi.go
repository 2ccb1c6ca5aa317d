// Package ffi implements the Sable runtime core: an unmanaged,
// reference-counted object system with a C-style call surface.
//
// Objects are identified by opaque integer handles. The caller is
// responsible for reference counting: every function documents whether it
// returns a new reference or a borrowed one, and failure is signaled the
// way a C runtime would signal it — a null handle, a -1 sentinel, or a
// ternary int — with details parked in a process-wide error indicator
// (see err.go).
//
// The runtime requires global exclusivity: at most one goroutine may be
// inside any of these functions at a time. LockRuntime and UnlockRuntime
// expose the lock; the sable package layers a checked token on top of it.
// Nothing here locks on its own.
package ffi

import (
	"fmt"
	"strconv"
	"sync"
)

// Handle identifies an object inside the runtime. The zero handle is null
// and never identifies a live object.
type Handle uint32

// Kind enumerates the runtime's built-in object kinds.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindTuple
	KindDict
	KindNamespace
	KindFunc
	KindType
	KindIterator
)

var kindNames = [...]string{
	KindNone:      "NoneType",
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindStr:       "str",
	KindTuple:     "tuple",
	KindDict:      "dict",
	KindNamespace: "namespace",
	KindFunc:      "function",
	KindType:      "type",
	KindIterator:  "iterator",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// CompareOp selects the operator for RichCompare and RichCompareBool.
type CompareOp int

const (
	OpLt CompareOp = iota
	OpLe
	OpEq
	OpNe
	OpGt
	OpGe
)

// Func is the calling convention for host callables. args is a tuple
// handle and kwargs a dict handle or null. Implementations return a new
// reference on success, or the null handle with the error indicator set.
type Func func(args Handle, kwargs Handle) Handle

// dictKey is the comparable form of a hashable object, used for dict
// storage. Unhashable kinds never produce one.
type dictKey struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// dictEntry keeps the original key handle alongside the value so both can
// be released when the slot or the dict goes away.
type dictEntry struct {
	key Handle
	val Handle
}

// object is the in-memory representation behind a handle.
type object struct {
	kind  Kind
	refs  int64
	i     int64             // bool, int
	f     float64           // float
	s     string            // str, func name, type name
	items []Handle          // tuple
	dict  map[dictKey]dictEntry
	order []dictKey         // dict insertion order
	attrs map[string]Handle // namespace
	fn    Func              // func
	src   Handle            // iterator source
	keys  []dictKey         // iterator snapshot of dict keys
	pos   int               // iterator position
}

var (
	runtimeMu sync.Mutex

	objects = make(map[Handle]*object)
	nextID  Handle = 1

	noneH  Handle
	trueH  Handle
	falseH Handle
	typeH  [KindIterator + 1]Handle
)

func init() {
	noneH = alloc(&object{kind: KindNone})
	trueH = alloc(&object{kind: KindBool, i: 1})
	falseH = alloc(&object{kind: KindBool, i: 0})
	for k := KindNone; k <= KindIterator; k++ {
		typeH[k] = alloc(&object{kind: KindType, s: k.String()})
	}
}

// LockRuntime acquires the runtime's global lock. Callers must hold it
// across every other call in this package.
func LockRuntime() { runtimeMu.Lock() }

// UnlockRuntime releases the runtime's global lock.
func UnlockRuntime() { runtimeMu.Unlock() }

func alloc(o *object) Handle {
	h := nextID
	nextID++
	o.refs = 1
	objects[h] = o
	return h
}

func get(h Handle) *object {
	o, ok := objects[h]
	if !ok {
		panic(fmt.Sprintf("ffi: dead or null handle %d", h))
	}
	return o
}

// IncRef increments the reference count of h.
func IncRef(h Handle) {
	o := get(h)
	o.refs++
	traceRef("incref", h, o)
}

// DecRef decrements the reference count of h, destroying the object when
// the count reaches zero. A count below zero is a bookkeeping bug and
// panics.
func DecRef(h Handle) {
	o := get(h)
	o.refs--
	traceRef("decref", h, o)
	if o.refs > 0 {
		return
	}
	if o.refs < 0 {
		panic(fmt.Sprintf("ffi: negative refcount on handle %d", h))
	}
	delete(objects, h)
	switch o.kind {
	case KindTuple:
		for _, it := range o.items {
			DecRef(it)
		}
	case KindDict:
		for _, e := range o.dict {
			DecRef(e.key)
			DecRef(e.val)
		}
	case KindNamespace:
		for _, v := range o.attrs {
			DecRef(v)
		}
	case KindIterator:
		DecRef(o.src)
	}
}

// RefCount returns the current reference count of h.
func RefCount(h Handle) int64 { return get(h).refs }

// KindOf reports the built-in kind of h.
func KindOf(h Handle) Kind { return get(h).kind }

// LiveObjects returns the number of live objects in the runtime,
// including the immortal singletons. Diagnostic only.
func LiveObjects() int { return len(objects) }

// None returns a borrowed reference to the None singleton.
func None() Handle { return noneH }

// True returns a borrowed reference to the true singleton.
func True() Handle { return trueH }

// False returns a borrowed reference to the false singleton.
func False() Handle { return falseH }

// NewBool returns a new reference to the bool singleton for v.
func NewBool(v bool) Handle {
	h := falseH
	if v {
		h = trueH
	}
	IncRef(h)
	return h
}

// NewInt creates an integer object. Returns a new reference.
func NewInt(v int64) Handle {
	return alloc(&object{kind: KindInt, i: v})
}

// NewFloat creates a float object. Returns a new reference.
func NewFloat(v float64) Handle {
	return alloc(&object{kind: KindFloat, f: v})
}

// NewString creates a string object. Returns a new reference. Any Go
// string is representable; creation never fails.
func NewString(s string) Handle {
	return alloc(&object{kind: KindStr, s: s})
}

// NewTuple creates a tuple from items, taking a new reference on each.
// Returns a new reference.
func NewTuple(items ...Handle) Handle {
	dup := make([]Handle, len(items))
	for i, it := range items {
		IncRef(it)
		dup[i] = it
	}
	return alloc(&object{kind: KindTuple, items: dup})
}

// NewDict creates an empty dict. Returns a new reference.
func NewDict() Handle {
	return alloc(&object{kind: KindDict, dict: make(map[dictKey]dictEntry)})
}

// NewNamespace creates an empty attribute-bearing object. Returns a new
// reference.
func NewNamespace() Handle {
	return alloc(&object{kind: KindNamespace, attrs: make(map[string]Handle)})
}

// NewFunc creates a host callable. Returns a new reference.
func NewFunc(name string, fn Func) Handle {
	return alloc(&object{kind: KindFunc, s: name, fn: fn})
}

// StringContents returns the text of a str object. The second result is
// false (with no error set; the caller owns translation) if h is not a
// str.
func StringContents(h Handle) (string, bool) {
	o := get(h)
	if o.kind != KindStr {
		return "", false
	}
	return o.s, true
}

// IntContents returns the value of an int or bool object.
func IntContents(h Handle) (int64, bool) {
	o := get(h)
	if o.kind != KindInt && o.kind != KindBool {
		return 0, false
	}
	return o.i, true
}

// FloatContents returns the value of a float object.
func FloatContents(h Handle) (float64, bool) {
	o := get(h)
	if o.kind != KindFloat {
		return 0, false
	}
	return o.f, true
}

// FuncName returns the name a host callable was registered under, or ""
// if h is not a callable.
func FuncName(h Handle) string {
	o := get(h)
	if o.kind != KindFunc {
		return ""
	}
	return o.s
}

// TupleItems returns the element handles of a tuple as borrowed
// references, or nil if h is not a tuple.
func TupleItems(h Handle) []Handle {
	o := get(h)
	if o.kind != KindTuple {
		return nil
	}
	return o.items
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	return s
}
