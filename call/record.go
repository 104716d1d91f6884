package call

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/quacker/failure"
	"github.com/ariel-frischer/quacker/future"
	"github.com/google/uuid"
)

// Tri is a three-valued truth: a deferred outcome may not be known yet.
type Tri int

const (
	False Tri = iota
	True
	Pending
)

func (t Tri) String() string {
	switch t {
	case True:
		return "true"
	case Pending:
		return "pending"
	default:
		return "false"
	}
}

// PanicError is the thrown outcome of a callable that panicked.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Deferred is the part of a Record that settles after the call returned.
type Deferred struct {
	mu         sync.Mutex
	done       chan struct{}
	settled    bool
	settleTime time.Time
	resolved   any
	rejected   error
	isRejected bool
}

func newDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

func (d *Deferred) settle(v any, err error, rejected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return
	}
	d.settled = true
	d.settleTime = time.Now()
	d.resolved = v
	d.rejected = err
	d.isRejected = rejected
	close(d.done)
}

// Done returns a channel closed once the deferred outcome has settled.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the deferred outcome is known.
func (d *Deferred) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// SettleTime returns when the outcome settled.
func (d *Deferred) SettleTime() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settleTime, d.settled
}

// Resolved returns the resolved value, if the outcome resolved.
func (d *Deferred) Resolved() (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolved, d.settled && !d.isRejected
}

// Rejected returns the rejection, if the outcome was rejected.
func (d *Deferred) Rejected() (error, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rejected, d.settled && d.isRejected
}

// Record is the full trace of one invocation.
type Record struct {
	ID        uuid.UUID
	Target    Callable
	Context   any
	Inputs    []any
	Stack     string
	StartTime time.Time
	EndTime   time.Time

	returned any
	thrown   error
	deferred *Deferred
}

// Invoke adapts fn (see Adapt) and records one call of it.
func Invoke(fn any, receiver any, inputs ...any) (*Record, error) {
	target, err := Adapt(fn)
	if err != nil {
		return nil, err
	}
	return New(target, receiver, inputs...), nil
}

// New invokes target once with receiver and inputs and records the outcome.
// A BoundFunc target always runs with its bound receiver, and the record's
// Context reflects that. Panics are recovered and recorded as thrown
// *PanicError values.
func New(target Callable, receiver any, inputs ...any) *Record {
	if bound, ok := BoundContextOf(target); ok {
		receiver = bound
	}
	r := &Record{
		ID:      uuid.New(),
		Target:  target,
		Context: receiver,
		Inputs:  append([]any(nil), inputs...),
		Stack:   stackSnapshot(3),
	}

	r.StartTime = time.Now()
	returned, thrown := invoke(target, receiver, r.Inputs)
	r.EndTime = time.Now()

	if thrown != nil {
		r.thrown = thrown
		return r
	}
	r.returned = returned
	r.deferred = attachDeferred(returned)
	return r
}

func invoke(target Callable, receiver any, inputs []any) (returned any, thrown error) {
	defer func() {
		if p := recover(); p != nil {
			returned = nil
			thrown = &PanicError{Value: p, Stack: stackSnapshot(4)}
		}
	}()
	return target.Call(receiver, inputs)
}

// attachDeferred registers continuations on a future-like value. Values
// that are not future-like, or whose Then panics, yield no deferred part.
func attachDeferred(returned any) (d *Deferred) {
	thenable, ok := returned.(future.Thenable)
	if !ok || isNilPointer(returned) {
		return nil
	}
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()
	d = newDeferred()
	thenable.Then(
		func(v any) { d.settle(v, nil, false) },
		func(err error) { d.settle(nil, err, true) },
	)
	return d
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func stackSnapshot(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

// Returned gives the immediate return value; ok is false if the call threw.
func (r *Record) Returned() (any, bool) {
	return r.returned, r.thrown == nil
}

// Thrown gives the immediate thrown error, or nil.
func (r *Record) Thrown() error {
	return r.thrown
}

// Deferred returns the deferred part, or nil if the call produced none.
func (r *Record) Deferred() *Deferred {
	return r.deferred
}

// HasDeferred reports whether the call produced a future-like value.
func (r *Record) HasDeferred() bool {
	return r.deferred != nil
}

// Duration is the time spent inside the synchronous call.
func (r *Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// DeferredDuration is the time from invocation to settlement. ok is false
// when there is no deferred part or it has not settled.
func (r *Record) DeferredDuration() (time.Duration, bool) {
	if r.deferred == nil {
		return 0, false
	}
	settledAt, ok := r.deferred.SettleTime()
	if !ok {
		return 0, false
	}
	return settledAt.Sub(r.StartTime), true
}

// ImmediateOutput is the thrown error if there was one, else the returned
// value. It never fails.
func (r *Record) ImmediateOutput() any {
	if r.thrown != nil {
		return r.thrown
	}
	return r.returned
}

// DeferredOutput is the rejection or resolved value of the deferred part.
func (r *Record) DeferredOutput() (any, error) {
	if r.deferred == nil {
		return nil, failure.ErrNoDeferredResult
	}
	r.deferred.mu.Lock()
	defer r.deferred.mu.Unlock()
	if !r.deferred.settled {
		return nil, failure.ErrNotYetSettled
	}
	if r.deferred.isRejected {
		return r.deferred.rejected, nil
	}
	return r.deferred.resolved, nil
}

// UltimateOutput is the deferred output when there is a deferred part,
// otherwise the immediate output.
func (r *Record) UltimateOutput() (any, error) {
	if r.deferred != nil {
		return r.DeferredOutput()
	}
	return r.ImmediateOutput(), nil
}

// Failed reports a thrown error or a rejection; Pending while the deferred
// part is unsettled.
func (r *Record) Failed() Tri {
	if r.thrown != nil {
		return True
	}
	if r.deferred == nil {
		return False
	}
	r.deferred.mu.Lock()
	defer r.deferred.mu.Unlock()
	if !r.deferred.settled {
		return Pending
	}
	if r.deferred.isRejected {
		return True
	}
	return False
}

// Succeeded mirrors Failed.
func (r *Record) Succeeded() Tri {
	switch r.Failed() {
	case True:
		return False
	case False:
		return True
	}
	return Pending
}

// Discharge replays the immediate outcome without invoking anything.
func (r *Record) Discharge() (any, error) {
	if r.thrown != nil {
		return nil, r.thrown
	}
	return r.returned, nil
}

// Redo invokes the same target with the same receiver and inputs again.
func (r *Record) Redo() *Record {
	return New(r.Target, r.Context, r.Inputs...)
}

// Completed returns a future resolved with r once any deferred part has
// settled.
func (r *Record) Completed() *future.Future {
	if r.deferred == nil {
		return future.Resolved(r)
	}
	f := future.New()
	go func() {
		<-r.deferred.done
		f.Resolve(r)
	}()
	return f
}

// Wait blocks until any deferred part has settled or ctx is done.
func (r *Record) Wait(ctx context.Context) error {
	if r.deferred == nil {
		return nil
	}
	select {
	case <-r.deferred.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// VerifyOutputStyle waits for completion and checks that the presence of a
// deferred part and the failure state match the expectations.
func (r *Record) VerifyOutputStyle(ctx context.Context, expectDeferred, expectFailure bool) (*Record, error) {
	if err := r.Wait(ctx); err != nil {
		return r, err
	}
	hadDeferred := r.HasDeferred()
	failed := r.Failed() == True
	if hadDeferred != expectDeferred || failed != expectFailure {
		return r, &failure.OutputStyleError{
			ExpectDeferred: expectDeferred,
			ExpectFailure:  expectFailure,
			HadDeferred:    hadDeferred,
			Failed:         failed,
		}
	}
	return r, nil
}
