// Package spy records invocations of callables and can temporarily put a
// recording wrapper in place of a member of some object.
package spy

import (
	"reflect"
	"sync"

	"github.com/ariel-frischer/quacker/call"
)

// Spy is a Callable that records every invocation of the callable it wraps
// and then replays the outcome to its caller.
type Spy struct {
	original call.Callable

	mu    sync.Mutex
	calls []*call.Record
}

var noop = call.Func(func(any, []any) (any, error) { return nil, nil })

// New wraps original. A nil original behaves like a function that returns
// nothing.
func New(original call.Callable) *Spy {
	if original == nil {
		original = noop
	}
	return &Spy{original: original}
}

// Call records a call of the original with receiver and inputs, then
// discharges its immediate outcome.
func (s *Spy) Call(receiver any, inputs []any) (any, error) {
	r := call.New(s.original, receiver, inputs...)
	s.mu.Lock()
	s.calls = append(s.calls, r)
	s.mu.Unlock()
	return r.Discharge()
}

// Calls returns the recorded calls, oldest first.
func (s *Spy) Calls() []*call.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*call.Record(nil), s.calls...)
}

// CallCount returns how many times the spy was invoked.
func (s *Spy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// LastCall returns the most recent call, or nil.
func (s *Spy) LastCall() *call.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// Original returns the wrapped callable.
func (s *Spy) Original() call.Callable {
	return s.original
}

// Func returns a Go function of type ft that invokes the spy. Results are
// converted back to the function's result types; a trailing error result
// carries a thrown error, and functions without one re-panic with it.
func (s *Spy) Func(ft reflect.Type) reflect.Value {
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		out, err := s.Call(nil, flattenArgs(ft, args))
		return results(ft, out, err)
	})
}

func flattenArgs(ft reflect.Type, args []reflect.Value) []any {
	inputs := make([]any, 0, len(args))
	for i, arg := range args {
		if ft.IsVariadic() && i == len(args)-1 {
			for j := 0; j < arg.Len(); j++ {
				inputs = append(inputs, arg.Index(j).Interface())
			}
			continue
		}
		inputs = append(inputs, arg.Interface())
	}
	return inputs
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func results(ft reflect.Type, out any, err error) []reflect.Value {
	n := ft.NumOut()
	hasErr := n > 0 && ft.Out(n-1) == errorType
	values := make([]reflect.Value, n)
	for i := range values {
		values[i] = reflect.Zero(ft.Out(i))
	}

	if err != nil {
		if !hasErr {
			if pe, ok := err.(*call.PanicError); ok {
				panic(pe.Value)
			}
			panic(err)
		}
		values[n-1] = reflect.ValueOf(&err).Elem()
		return values
	}

	plain := n
	if hasErr {
		plain--
	}
	switch plain {
	case 0:
	case 1:
		values[0] = resultValue(out, ft.Out(0))
	default:
		outs, _ := out.([]any)
		for i := 0; i < plain && i < len(outs); i++ {
			values[i] = resultValue(outs[i], ft.Out(i))
		}
	}
	return values
}

func resultValue(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return reflect.Zero(t)
}
