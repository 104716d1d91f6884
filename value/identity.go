package value

import "reflect"

type refKey struct {
	typ reflect.Type
	ptr uintptr
}

type sliceKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type compositeKey struct {
	typ   reflect.Type
	parts any
}

// partKey keeps the dynamic type of a field or element next to its key, so
// an any holding 1 and one holding "1" stay apart.
type partKey struct {
	typ reflect.Type
	val any
}

// chainKey links the parts of a struct or array into a single comparable
// value, head first.
type chainKey struct {
	head partKey
	tail any
}

// Identity returns a comparable key under which v matches only itself.
//
// Comparable values are their own key, so equal strings and numbers share
// a key. Slices, maps and functions key on the reference they hold, which
// means two separately built slices with the same contents do not match.
// Function identity is the code pointer, so closures created from the same
// literal share a key.
func Identity(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Comparable() {
		return v
	}
	return identityOf(rv)
}

func identityOf(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Slice:
		return sliceKey{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return refKey{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return identityOf(rv.Elem())
	case reflect.Struct:
		return compositeOf(rv.Type(), rv.NumField(), rv.Field)
	case reflect.Array:
		return compositeOf(rv.Type(), rv.Len(), rv.Index)
	}
	return refKey{typ: rv.Type()}
}

func compositeOf(typ reflect.Type, n int, at func(int) reflect.Value) compositeKey {
	var chain any
	for i := n - 1; i >= 0; i-- {
		chain = chainKey{head: identityPart(at(i)), tail: chain}
	}
	return compositeKey{typ: typ, parts: chain}
}

// identityPart keys a nested value that may not be interface-able
// (unexported fields). Interfaces are keyed by what they hold.
func identityPart(rv reflect.Value) partKey {
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return partKey{typ: rv.Type()}
		}
		rv = rv.Elem()
	}
	k := partKey{typ: rv.Type()}
	if rv.Comparable() && rv.CanInterface() {
		k.val = rv.Interface()
		return k
	}
	switch rv.Kind() {
	case reflect.Bool:
		k.val = rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		k.val = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		k.val = rv.Uint()
	case reflect.Float32, reflect.Float64:
		k.val = rv.Float()
	case reflect.Complex64, reflect.Complex128:
		k.val = rv.Complex()
	case reflect.String:
		k.val = rv.String()
	default:
		k.val = identityOf(rv)
	}
	return k
}
