package value

import (
	"math"
	"reflect"
	"time"
)

// Equaler lets a type define its own structural equality.
type Equaler interface {
	Equal(other any) bool
}

var (
	timeType = reflect.TypeOf(time.Time{})
	setType  = reflect.TypeOf(Collection{})
)

// visit marks a pair of references already under comparison, which is what
// keeps cyclic structures from recursing forever.
type visit struct {
	a, b uintptr
	typ  reflect.Type
}

// Equal reports whether a and b are structurally equal.
//
// Rules, applied in order:
//   - values of different dynamic types are unequal
//   - Equaler implementations decide for themselves; time.Time compares instants
//   - Collection compares members without regard to order
//   - functions, channels and unsafe pointers compare by identity
//   - NaN equals NaN
//   - nil and empty slices or maps are equal
//   - maps match keys exactly first, then structurally
//   - pointers, slices and maps already being compared are assumed equal
func Equal(a, b any) bool {
	return equal(reflect.ValueOf(a), reflect.ValueOf(b), make(map[visit]bool))
}

func equal(a, b reflect.Value, seen map[visit]bool) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	if a.CanInterface() && b.CanInterface() {
		if eq, ok := a.Interface().(Equaler); ok {
			return eq.Equal(b.Interface())
		}
		if a.Type() == timeType {
			return a.Interface().(time.Time).Equal(b.Interface().(time.Time))
		}
	}
	if a.Type() == setType {
		return equalSets(a, b, seen)
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		x, y := a.Float(), b.Float()
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() == b.IsNil()
		}
		return equal(a.Elem(), b.Elem(), seen)
	case reflect.Pointer:
		if a.Pointer() == b.Pointer() {
			return true
		}
		if a.IsNil() || b.IsNil() {
			return false
		}
		if markSeen(a, b, seen) {
			return true
		}
		return equal(a.Elem(), b.Elem(), seen)
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !equal(a.Index(i), b.Index(i), seen) {
				return false
			}
		}
		return true
	case reflect.Slice:
		if a.Len() != b.Len() {
			return false
		}
		if a.Len() == 0 || a.Pointer() == b.Pointer() {
			return true
		}
		if markSeen(a, b, seen) {
			return true
		}
		for i := 0; i < a.Len(); i++ {
			if !equal(a.Index(i), b.Index(i), seen) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.Len() != b.Len() {
			return false
		}
		if a.Len() == 0 || a.Pointer() == b.Pointer() {
			return true
		}
		if markSeen(a, b, seen) {
			return true
		}
		return equalMaps(a, b, seen)
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !equal(a.Field(i), b.Field(i), seen) {
				return false
			}
		}
		return true
	}
	return false
}

func markSeen(a, b reflect.Value, seen map[visit]bool) bool {
	v := visit{a: a.Pointer(), b: b.Pointer(), typ: a.Type()}
	if seen[v] {
		return true
	}
	seen[v] = true
	return false
}

func equalMaps(a, b reflect.Value, seen map[visit]bool) bool {
	var unmatched []reflect.Value
	for _, k := range a.MapKeys() {
		bv := b.MapIndex(k)
		if !bv.IsValid() {
			unmatched = append(unmatched, k)
			continue
		}
		if !equal(a.MapIndex(k), bv, seen) {
			return false
		}
	}
	if len(unmatched) == 0 {
		return true
	}

	// Keys without an exact counterpart (distinct pointers, say) may still
	// have a structurally equal partner among b's leftover keys.
	var spare []reflect.Value
	for _, bk := range b.MapKeys() {
		if !a.MapIndex(bk).IsValid() {
			spare = append(spare, bk)
		}
	}
	used := make([]bool, len(spare))
	for _, k := range unmatched {
		found := false
		for i, bk := range spare {
			if used[i] {
				continue
			}
			if equal(k, bk, seen) && equal(a.MapIndex(k), b.MapIndex(bk), seen) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalSets(a, b reflect.Value, seen map[visit]bool) bool {
	as, bs := a.Field(0), b.Field(0)
	if as.Len() != bs.Len() {
		return false
	}
	used := make([]bool, bs.Len())
	for i := 0; i < as.Len(); i++ {
		found := false
		for j := 0; j < bs.Len(); j++ {
			if used[j] {
				continue
			}
			if equal(as.Index(i), bs.Index(j), seen) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Collection is an unordered set of values. Two collections are Equal when
// their members can be paired off one-to-one by structural equality.
type Collection struct {
	items []any
}

// NewSet returns a set holding items, dropping structural duplicates.
func NewSet(items ...any) Collection {
	var s Collection
	for _, it := range items {
		s = s.With(it)
	}
	return s
}

// With returns a copy of the set with v added.
func (s Collection) With(v any) Collection {
	if s.Contains(v) {
		return s
	}
	items := make([]any, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Collection{items: append(items, v)}
}

// Contains reports whether a structurally equal member is present.
func (s Collection) Contains(v any) bool {
	for _, it := range s.items {
		if Equal(it, v) {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s Collection) Len() int {
	return len(s.items)
}

// Items returns the members in insertion order.
func (s Collection) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}
