// Package call traces single invocations of arbitrary callables.
//
// A Record invokes its target exactly once and keeps everything observable
// about that invocation: inputs, receiver, timing, and an immediate outcome
// (returned value or thrown error). When the returned value is future-like
// (see future.Thenable) the Record also tracks the deferred outcome, which
// settles later and at most once.
package call

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ariel-frischer/quacker/failure"
)

// ErrInputType is thrown by adapted Go functions handed an input that
// cannot be assigned to the corresponding parameter.
var ErrInputType = errors.New("input type mismatch")

// Callable is anything that can be invoked with a receiver and inputs. A
// non-nil error is the call's thrown outcome.
type Callable interface {
	Call(receiver any, inputs []any) (any, error)
}

// Func adapts an ordinary function to Callable.
type Func func(receiver any, inputs []any) (any, error)

// Call invokes f.
func (f Func) Call(receiver any, inputs []any) (any, error) {
	return f(receiver, inputs)
}

// BoundFunc is a callable with a fixed receiver. Whatever receiver a
// caller supplies is replaced by BoundContext.
type BoundFunc struct {
	Fn           Callable
	BoundContext any
}

// Bind fixes the receiver of fn.
func Bind(fn Callable, boundContext any) *BoundFunc {
	return &BoundFunc{Fn: fn, BoundContext: boundContext}
}

// Call invokes the wrapped callable with the bound receiver.
func (b *BoundFunc) Call(_ any, inputs []any) (any, error) {
	return b.Fn.Call(b.BoundContext, inputs)
}

// BoundContextOf returns the fixed receiver of fn when fn is a BoundFunc.
func BoundContextOf(fn any) (any, bool) {
	if b, ok := fn.(*BoundFunc); ok && b != nil {
		return b.BoundContext, true
	}
	return nil, false
}

// IsCallable reports whether Adapt would accept v.
func IsCallable(v any) bool {
	_, err := Adapt(v)
	return err == nil
}

// Adapt turns v into a Callable. Callables are returned as they are; any
// other Go function is invoked through reflection, ignoring the receiver,
// with a trailing error result treated as the thrown outcome. Functions with
// several non-error results return them as a []any.
func Adapt(v any) (Callable, error) {
	switch fn := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: got nil", failure.ErrNotCallable)
	case Callable:
		return fn, nil
	case func(any, []any) (any, error):
		return Func(fn), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: got %T", failure.ErrNotCallable, v)
	}
	return reflectFunc{fn: rv}, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type reflectFunc struct {
	fn reflect.Value
}

func (r reflectFunc) Call(_ any, inputs []any) (any, error) {
	t := r.fn.Type()
	if (!t.IsVariadic() && len(inputs) != t.NumIn()) || (t.IsVariadic() && len(inputs) < t.NumIn()-1) {
		return nil, fmt.Errorf("%w: function takes %d inputs, got %d", failure.ErrArityMismatch, t.NumIn(), len(inputs))
	}

	args := make([]reflect.Value, len(inputs))
	for i, in := range inputs {
		pt := paramType(t, i)
		arg, err := convertInput(in, pt)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		args[i] = arg
	}

	outs := r.fn.Call(args)
	if n := len(outs); n > 0 && t.Out(n-1) == errorType {
		last := outs[n-1]
		outs = outs[:n-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
	}

	switch len(outs) {
	case 0:
		return nil, nil
	case 1:
		return outs[0].Interface(), nil
	}
	results := make([]any, len(outs))
	for i, out := range outs {
		results[i] = out.Interface()
	}
	return results, nil
}

func paramType(t reflect.Type, i int) reflect.Type {
	if t.IsVariadic() && i >= t.NumIn()-1 {
		return t.In(t.NumIn() - 1).Elem()
	}
	return t.In(i)
}

func convertInput(in any, pt reflect.Type) (reflect.Value, error) {
	if in == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: nil is not a valid %s", ErrInputType, pt)
	}
	v := reflect.ValueOf(in)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(pt.Kind()) {
		return v.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T is not assignable to %s", ErrInputType, in, pt)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
