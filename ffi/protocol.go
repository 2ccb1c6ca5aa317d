package ffi

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// GetAttr retrieves an attribute by name (a str handle). Returns a new
// reference, or null with the error indicator set.
func GetAttr(obj, name Handle) Handle {
	attr, ok := attrName(name)
	if !ok {
		return 0
	}
	o := get(obj)
	if o.kind != KindNamespace {
		ErrSetf(AttributeError, "'%s' object has no attribute %q", o.kind, attr)
		return 0
	}
	v, ok := o.attrs[attr]
	if !ok {
		ErrSetf(AttributeError, "'%s' object has no attribute %q", o.kind, attr)
		return 0
	}
	IncRef(v)
	return v
}

// HasAttr reports whether obj has the named attribute: 1 or 0. Never
// fails; any error raised during the lookup is swallowed.
func HasAttr(obj, name Handle) int {
	v := GetAttr(obj, name)
	if v == 0 {
		ErrClear()
		return 0
	}
	DecRef(v)
	return 1
}

// SetAttr stores an attribute. Returns 0 on success, -1 on failure with
// the error indicator set. The stored value is newly referenced.
func SetAttr(obj, name, value Handle) int {
	attr, ok := attrName(name)
	if !ok {
		return -1
	}
	o := get(obj)
	if o.kind != KindNamespace {
		ErrSetf(TypeError, "'%s' object does not support attribute assignment", o.kind)
		return -1
	}
	IncRef(value)
	if old, ok := o.attrs[attr]; ok {
		DecRef(old)
	}
	o.attrs[attr] = value
	return 0
}

// DelAttr removes an attribute. Returns 0 on success, -1 on failure.
func DelAttr(obj, name Handle) int {
	attr, ok := attrName(name)
	if !ok {
		return -1
	}
	o := get(obj)
	if o.kind != KindNamespace {
		ErrSetf(TypeError, "'%s' object does not support attribute deletion", o.kind)
		return -1
	}
	old, ok := o.attrs[attr]
	if !ok {
		ErrSetf(AttributeError, "'%s' object has no attribute %q", o.kind, attr)
		return -1
	}
	delete(o.attrs, attr)
	DecRef(old)
	return 0
}

func attrName(name Handle) (string, bool) {
	s, ok := StringContents(name)
	if !ok {
		ErrSetf(TypeError, "attribute name must be str, not '%s'", get(name).kind)
		return "", false
	}
	return s, true
}

// RichCompareBool applies op to a and b and collapses the outcome to a
// ternary int: 1 true, 0 false, -1 failure with the error indicator set.
// Identical handles short-circuit Eq and Ne.
func RichCompareBool(a, b Handle, op CompareOp) int {
	if a == b {
		switch op {
		case OpEq, OpLe, OpGe:
			// NaN is the one value not equal to itself.
			if o := get(a); o.kind == KindFloat && math.IsNaN(o.f) {
				return 0
			}
			return 1
		case OpNe:
			if o := get(a); o.kind == KindFloat && math.IsNaN(o.f) {
				return 1
			}
			return 0
		}
	}
	oa, ob := get(a), get(b)
	if isIntLike(oa.kind) && isIntLike(ob.kind) {
		// int64 pairs must not round-trip through float64: values past
		// 2^53 lose precision there and distinct ints compare equal.
		return cmpInt(oa.i, ob.i, op)
	}
	if fa, aNum := numeric(oa); aNum {
		if fb, bNum := numeric(ob); bNum {
			return cmpFloat(fa, fb, op)
		}
	}
	if oa.kind == KindStr && ob.kind == KindStr {
		return cmpInt(int64(strings.Compare(oa.s, ob.s)), 0, op)
	}
	// Distinct kinds: equality is simply false, ordering is undefined.
	switch op {
	case OpEq:
		return 0
	case OpNe:
		return 1
	}
	if oa.kind != ob.kind {
		ErrSetf(TypeError, "'%s' not supported between instances of '%s' and '%s'",
			opSymbol(op), oa.kind, ob.kind)
		return -1
	}
	// Same unordered kind: identity equality already failed above, and no
	// order is defined, so every ordering test answers false.
	return 0
}

// RichCompare applies op to a and b and returns the boolean result object
// as a new reference, or null with the error indicator set.
func RichCompare(a, b Handle, op CompareOp) Handle {
	switch RichCompareBool(a, b, op) {
	case 1:
		return NewBool(true)
	case 0:
		return NewBool(false)
	default:
		return 0
	}
}

func numeric(o *object) (float64, bool) {
	switch o.kind {
	case KindInt, KindBool:
		return float64(o.i), true
	case KindFloat:
		return o.f, true
	}
	return 0, false
}

func cmpFloat(a, b float64, op CompareOp) int {
	switch op {
	case OpLt:
		return b2i(a < b)
	case OpLe:
		return b2i(a <= b)
	case OpEq:
		return b2i(a == b)
	case OpNe:
		return b2i(a != b)
	case OpGt:
		return b2i(a > b)
	default:
		return b2i(a >= b)
	}
}

func isIntLike(k Kind) bool {
	return k == KindInt || k == KindBool
}

func cmpInt(a, b int64, op CompareOp) int {
	switch op {
	case OpLt:
		return b2i(a < b)
	case OpLe:
		return b2i(a <= b)
	case OpEq:
		return b2i(a == b)
	case OpNe:
		return b2i(a != b)
	case OpGt:
		return b2i(a > b)
	default:
		return b2i(a >= b)
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func opSymbol(op CompareOp) string {
	switch op {
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	default:
		return ">="
	}
}

// Repr returns the canonical representation of obj as a new str handle,
// or null with the error indicator set.
func Repr(obj Handle) Handle {
	s, ok := repr(obj)
	if !ok {
		return 0
	}
	return NewString(s)
}

// Str returns the informal string form of obj as a new str handle, or
// null with the error indicator set. str objects render without quotes;
// everything else matches Repr.
func Str(obj Handle) Handle {
	o := get(obj)
	if o.kind == KindStr {
		return NewString(o.s)
	}
	return Repr(obj)
}

func repr(h Handle) (string, bool) {
	o := get(h)
	switch o.kind {
	case KindNone:
		return "None", true
	case KindBool:
		if o.i != 0 {
			return "True", true
		}
		return "False", true
	case KindInt:
		return fmt.Sprintf("%d", o.i), true
	case KindFloat:
		return formatFloat(o.f), true
	case KindStr:
		return fmt.Sprintf("%q", o.s), true
	case KindTuple:
		parts := make([]string, len(o.items))
		for i, it := range o.items {
			s, ok := repr(it)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)", true
		}
		return "(" + strings.Join(parts, ", ") + ")", true
	case KindDict:
		parts := make([]string, 0, len(o.order))
		for _, k := range o.order {
			e := o.dict[k]
			ks, ok := repr(e.key)
			if !ok {
				return "", false
			}
			vs, ok := repr(e.val)
			if !ok {
				return "", false
			}
			parts = append(parts, ks+": "+vs)
		}
		return "{" + strings.Join(parts, ", ") + "}", true
	case KindNamespace:
		names := make([]string, 0, len(o.attrs))
		for name := range o.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("<namespace %v>", names), true
	case KindFunc:
		return fmt.Sprintf("<function %s>", o.s), true
	case KindType:
		return fmt.Sprintf("<type '%s'>", o.s), true
	case KindIterator:
		return "<iterator>", true
	}
	ErrSetf(RuntimeError, "unrepresentable kind %d", o.kind)
	return "", false
}

// CallableCheck reports whether obj can be called: 1 or 0. Never fails.
func CallableCheck(obj Handle) int {
	if get(obj).kind == KindFunc {
		return 1
	}
	return 0
}

// Call invokes a callable with a tuple of positional arguments and an
// optional dict of keyword arguments (null for none). Returns a new
// reference, or null with the error indicator set.
func Call(callable, args, kwargs Handle) Handle {
	o := get(callable)
	if o.kind != KindFunc {
		ErrSetf(TypeError, "'%s' object is not callable", o.kind)
		return 0
	}
	if args == 0 {
		ErrSet(TypeError, "argument list must be a tuple, not null")
		return 0
	}
	if get(args).kind != KindTuple {
		ErrSetf(TypeError, "argument list must be a tuple, not '%s'", get(args).kind)
		return 0
	}
	if kwargs != 0 && get(kwargs).kind != KindDict {
		ErrSetf(TypeError, "keyword arguments must be a dict, not '%s'", get(kwargs).kind)
		return 0
	}
	r := o.fn(args, kwargs)
	if r == 0 && !ErrOccurred() {
		ErrSetf(RuntimeError, "function %s returned null without setting an error", o.s)
	}
	return r
}

// Hash returns the hash of obj, or the -1 sentinel. -1 is ambiguous: it
// is a legitimate hash value for some objects, so callers must consult
// ErrOccurred to distinguish failure.
func Hash(obj Handle) int64 {
	o := get(obj)
	switch o.kind {
	case KindNone:
		return int64(noneH)
	case KindBool, KindInt:
		return o.i
	case KindFloat:
		if o.f == math.Trunc(o.f) && !math.IsInf(o.f, 0) {
			return int64(o.f)
		}
		return int64(math.Float64bits(o.f))
	case KindStr:
		d := fnv.New64a()
		d.Write([]byte(o.s))
		return int64(d.Sum64())
	case KindTuple:
		var acc int64 = 0x345678
		for _, it := range o.items {
			h := Hash(it)
			if h == -1 && ErrOccurred() {
				return -1
			}
			acc = acc*1000003 ^ h
		}
		return acc
	case KindNamespace, KindFunc, KindType:
		return int64(obj)
	}
	ErrSetf(TypeError, "unhashable type: '%s'", o.kind)
	return -1
}

// IsTrue reports the truth of obj as a ternary int: 1 true, 0 false, -1
// failure with the error indicator set.
func IsTrue(obj Handle) int {
	o := get(obj)
	switch o.kind {
	case KindNone:
		return 0
	case KindBool, KindInt:
		return b2i(o.i != 0)
	case KindFloat:
		return b2i(o.f != 0)
	case KindStr:
		return b2i(len(o.s) != 0)
	case KindTuple:
		return b2i(len(o.items) != 0)
	case KindDict:
		return b2i(len(o.dict) != 0)
	default:
		return 1
	}
}

// Size returns the number of elements in a sized object, or -1 with the
// error indicator set.
func Size(obj Handle) int64 {
	o := get(obj)
	switch o.kind {
	case KindStr:
		return int64(utf8.RuneCountInString(o.s))
	case KindTuple:
		return int64(len(o.items))
	case KindDict:
		return int64(len(o.dict))
	}
	ErrSetf(TypeError, "object of type '%s' has no len()", o.kind)
	return -1
}

func hashKey(h Handle) (dictKey, bool) {
	o := get(h)
	switch o.kind {
	case KindNone:
		return dictKey{kind: KindNone}, true
	case KindBool, KindInt:
		// Bools hash like their integer values so 1 and True collide.
		return dictKey{kind: KindInt, i: o.i}, true
	case KindFloat:
		if o.f == math.Trunc(o.f) && !math.IsInf(o.f, 0) {
			return dictKey{kind: KindInt, i: int64(o.f)}, true
		}
		if math.IsNaN(o.f) {
			// NaN compares unequal to itself, so a NaN-valued f field
			// would make the entry unfindable in the map. All NaNs
			// collapse to one canonical bit-pattern key instead.
			return dictKey{kind: KindFloat, i: int64(math.Float64bits(math.NaN()))}, true
		}
		return dictKey{kind: KindFloat, f: o.f}, true
	case KindStr:
		return dictKey{kind: KindStr, s: o.s}, true
	case KindNamespace, KindFunc, KindType:
		return dictKey{kind: o.kind, i: int64(h)}, true
	}
	ErrSetf(TypeError, "unhashable type: '%s'", o.kind)
	return dictKey{}, false
}

// GetItem returns obj[key] as a new reference, or null with the error
// indicator set. Tuples index by integer, dicts by any hashable key.
func GetItem(obj, key Handle) Handle {
	o := get(obj)
	switch o.kind {
	case KindTuple:
		idx, ok := IntContents(key)
		if !ok {
			ErrSetf(TypeError, "tuple indices must be integers, not '%s'", get(key).kind)
			return 0
		}
		if idx < 0 {
			idx += int64(len(o.items))
		}
		if idx < 0 || idx >= int64(len(o.items)) {
			ErrSet(IndexError, "tuple index out of range")
			return 0
		}
		v := o.items[idx]
		IncRef(v)
		return v
	case KindDict:
		k, ok := hashKey(key)
		if !ok {
			return 0
		}
		e, ok := o.dict[k]
		if !ok {
			r, _ := repr(key)
			ErrSet(KeyError, r)
			return 0
		}
		IncRef(e.val)
		return e.val
	}
	ErrSetf(TypeError, "'%s' object is not subscriptable", o.kind)
	return 0
}

// SetItem stores obj[key] = value. Returns 0 on success, -1 on failure
// with the error indicator set.
func SetItem(obj, key, value Handle) int {
	o := get(obj)
	if o.kind != KindDict {
		ErrSetf(TypeError, "'%s' object does not support item assignment", o.kind)
		return -1
	}
	k, ok := hashKey(key)
	if !ok {
		return -1
	}
	IncRef(value)
	if e, exists := o.dict[k]; exists {
		DecRef(e.val)
		o.dict[k] = dictEntry{key: e.key, val: value}
		return 0
	}
	IncRef(key)
	o.dict[k] = dictEntry{key: key, val: value}
	o.order = append(o.order, k)
	return 0
}

// DelItem removes obj[key]. Returns 0 on success, -1 on failure with the
// error indicator set.
func DelItem(obj, key Handle) int {
	o := get(obj)
	if o.kind != KindDict {
		ErrSetf(TypeError, "'%s' object does not support item deletion", o.kind)
		return -1
	}
	k, ok := hashKey(key)
	if !ok {
		return -1
	}
	e, exists := o.dict[k]
	if !exists {
		r, _ := repr(key)
		ErrSet(KeyError, r)
		return -1
	}
	delete(o.dict, k)
	for i, existing := range o.order {
		if existing == k {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	DecRef(e.key)
	DecRef(e.val)
	return 0
}

// GetIter returns an iterator over obj as a new reference, or null with
// the error indicator set. Iterators return themselves.
func GetIter(obj Handle) Handle {
	o := get(obj)
	switch o.kind {
	case KindIterator:
		IncRef(obj)
		return obj
	case KindTuple:
		IncRef(obj)
		return alloc(&object{kind: KindIterator, src: obj})
	case KindDict:
		IncRef(obj)
		snapshot := make([]dictKey, len(o.order))
		copy(snapshot, o.order)
		return alloc(&object{kind: KindIterator, src: obj, keys: snapshot})
	}
	ErrSetf(TypeError, "'%s' object is not iterable", o.kind)
	return 0
}

// IterNext advances an iterator, returning the next element as a new
// reference. A null result with no error flagged means exhaustion; a
// null result with an error flagged is a failure.
func IterNext(it Handle) Handle {
	o := get(it)
	if o.kind != KindIterator {
		ErrSetf(TypeError, "'%s' object is not an iterator", o.kind)
		return 0
	}
	src := get(o.src)
	switch src.kind {
	case KindTuple:
		if o.pos >= len(src.items) {
			return 0
		}
		v := src.items[o.pos]
		o.pos++
		IncRef(v)
		return v
	case KindDict:
		for o.pos < len(o.keys) {
			e, ok := src.dict[o.keys[o.pos]]
			o.pos++
			if ok {
				// Keys deleted mid-iteration are skipped.
				IncRef(e.key)
				return e.key
			}
		}
		return 0
	}
	ErrSetf(RuntimeError, "iterator over unsupported kind '%s'", src.kind)
	return 0
}

// TypeOf returns a borrowed reference to the type object for obj's kind.
// Never fails.
func TypeOf(obj Handle) Handle {
	return typeH[get(obj).kind]
}

// TypeName returns the name of a type object, or the name of obj's type
// when obj is not itself a type.
func TypeName(obj Handle) string {
	o := get(obj)
	if o.kind == KindType {
		return o.s
	}
	return o.kind.String()
}
