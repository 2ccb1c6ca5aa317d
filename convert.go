package sable

import (
	"fmt"
	"reflect"

	"github.com/sable-lang/sable/ffi"
)

// ToObject converts a host value into a runtime object wrapper. The
// caller owns the result and must release it.
//
// Supported directly: nil (None), bool, string, the signed and unsigned
// integer types, float32/float64, *Object (aliased, not consumed), and
// typed views. Slices become tuples and string-keyed maps become dicts,
// element-wise. Anything else is an error.
func ToObject(tok Token, v any) (*Object, error) {
	tok.check()
	switch val := v.(type) {
	case nil:
		return FromBorrowed(tok, ffi.None())
	case *Object:
		if val == nil {
			return FromBorrowed(tok, ffi.None())
		}
		return borrowed(val.h), nil
	case Str:
		return borrowed(val.o.h), nil
	case Float:
		return borrowed(val.o.h), nil
	case Tuple:
		return borrowed(val.o.h), nil
	case Dict:
		return borrowed(val.o.h), nil
	case Type:
		return borrowed(val.o.h), nil
	case bool:
		return FromOwned(tok, ffi.NewBool(val))
	case string:
		return FromOwned(tok, ffi.NewString(val))
	case int:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case int8:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case int16:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case int32:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case int64:
		return FromOwned(tok, ffi.NewInt(val))
	case uint:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case uint8:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case uint16:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case uint32:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case uint64:
		return FromOwned(tok, ffi.NewInt(int64(val)))
	case float32:
		return FromOwned(tok, ffi.NewFloat(float64(val)))
	case float64:
		return FromOwned(tok, ffi.NewFloat(val))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceToTuple(tok, rv)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return mapToDict(tok, rv)
		}
	}
	return nil, fmt.Errorf("sable: cannot convert %T to a runtime object", v)
}

func sliceToTuple(tok Token, rv reflect.Value) (*Object, error) {
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return argsTuple(tok, items)
}

func mapToDict(tok Token, rv reflect.Value) (*Object, error) {
	d, err := FromOwned(tok, ffi.NewDict())
	if err != nil {
		return nil, err
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := d.SetItem(tok, iter.Key().String(), iter.Value().Interface()); err != nil {
			d.Release(tok)
			return nil, err
		}
	}
	return d, nil
}

// Extract pulls a host value out of a runtime object. Supported targets:
// string (from str objects), bool (from bool objects), int and int64
// (from int or bool objects), float64 (from float or int objects). A
// kind mismatch yields a *DowncastError.
func Extract[T any](tok Token, o *Object) (T, error) {
	tok.check()
	var out T
	switch p := any(&out).(type) {
	case *string:
		s, ok := ffi.StringContents(o.h)
		if !ok {
			return out, &DowncastError{Expected: "str", Actual: ffi.TypeName(o.h)}
		}
		*p = s
	case *bool:
		if ffi.KindOf(o.h) != ffi.KindBool {
			return out, &DowncastError{Expected: "bool", Actual: ffi.TypeName(o.h)}
		}
		v, _ := ffi.IntContents(o.h)
		*p = v != 0
	case *int64:
		v, ok := ffi.IntContents(o.h)
		if !ok {
			return out, &DowncastError{Expected: "int", Actual: ffi.TypeName(o.h)}
		}
		*p = v
	case *int:
		v, ok := ffi.IntContents(o.h)
		if !ok {
			return out, &DowncastError{Expected: "int", Actual: ffi.TypeName(o.h)}
		}
		*p = int(v)
	case *float64:
		if f, ok := ffi.FloatContents(o.h); ok {
			*p = f
		} else if v, ok := ffi.IntContents(o.h); ok {
			*p = float64(v)
		} else {
			return out, &DowncastError{Expected: "float", Actual: ffi.TypeName(o.h)}
		}
	default:
		return out, fmt.Errorf("sable: unsupported extraction target %T", out)
	}
	return out, nil
}
