// Package value describes how quacker looks at arbitrary candidate values.
//
// Verification never assumes a concrete type. Member access goes through the
// Object capability first, so a type can describe its own members, and only
// falls back to reflection over maps and structs when a value does not
// implement it.
package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotSettable is returned by Set when the target cannot take a member.
var ErrNotSettable = errors.New("value does not support setting members")

// Object is implemented by values that can report their own members.
type Object interface {
	HasMember(name string) bool
	GetMember(name string) (any, bool)
}

// Settable is implemented by values whose members can be replaced.
type Settable interface {
	SetMember(name string, v any) error
}

// Has reports whether v exposes a member called name.
func Has(v any, name string) bool {
	if o, ok := v.(Object); ok {
		return o.HasMember(name)
	}
	_, ok := Lookup(v, name)
	return ok
}

// Lookup returns the member called name. Maps keyed by strings are indexed,
// structs expose exported fields, and any value exposes its exported methods
// as bound method values.
func Lookup(v any, name string) (any, bool) {
	if v == nil {
		return nil, false
	}
	if o, ok := v.(Object); ok {
		return o.GetMember(name)
	}

	rv := reflect.ValueOf(v)
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		sf, ok := rv.Type().FieldByName(name)
		if !ok || !sf.IsExported() {
			return nil, false
		}
		return rv.FieldByIndex(sf.Index).Interface(), true
	}
	return nil, false
}

// Set replaces the member called name on target. Supported targets are
// Settable values, maps keyed by strings, and pointers to structs with an
// exported field of an assignable type.
func Set(target any, name string, v any) error {
	if s, ok := target.(Settable); ok {
		return s.SetMember(name, v)
	}
	if target == nil {
		return ErrNotSettable
	}

	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key type %s", ErrNotSettable, rv.Type().Key())
		}
		nv, err := assignable(v, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), nv)
		return nil
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: %T", ErrNotSettable, target)
		}
		field := rv.Elem().FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("%w: no settable field %q on %T", ErrNotSettable, name, target)
		}
		nv, err := assignable(v, field.Type())
		if err != nil {
			return err
		}
		field.Set(nv)
		return nil
	}
	return fmt.Errorf("%w: %T", ErrNotSettable, target)
}

func assignable(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%w: %T is not assignable to %s", ErrNotSettable, v, t)
	}
	return rv, nil
}

// Members is a ready-made Object backed by a map. It keeps insertion order
// so descriptions of it are stable.
type Members struct {
	names  []string
	values map[string]any
}

// NewMembers builds a Members from alternating name/value pairs.
func NewMembers(pairs ...any) *Members {
	m := &Members{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("value: member name at position %d is %T, not string", i, pairs[i]))
		}
		_ = m.SetMember(name, pairs[i+1])
	}
	return m
}

func (m *Members) HasMember(name string) bool {
	_, ok := m.values[name]
	return ok
}

func (m *Members) GetMember(name string) (any, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Members) SetMember(name string, v any) error {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = v
	return nil
}

// Names returns member names in insertion order.
func (m *Members) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}
