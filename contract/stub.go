package contract

import (
	"context"
	"errors"
	"sync"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/future"
	"github.com/ariel-frischer/quacker/spy"
	"github.com/ariel-frischer/quacker/value"
)

// errNilThrow is thrown in place of a nil error from an example declared
// with Throw(nil), so the call still reads as a failure.
var errNilThrow = errors.New("ioexample throws a nil error")

// Stub is a callable fake that answers invocations from declared
// ioexamples. Every invocation is recorded by the embedded Spy.
//
// Examples are indexed by the exact identity of the receiver and of each
// input (see value.Identity). Examples sharing a key form a bucket that is
// served round-robin.
type Stub struct {
	*spy.Spy

	examples []*IOExample
	root     *trieNode
	env      *env
}

type trieNode struct {
	children map[any]*trieNode
	bucket   *bucket
}

// bucket holds the examples for one key and the cursor of the next one to
// serve.
type bucket struct {
	mu       sync.Mutex
	examples []*IOExample
	cursor   int
}

func (b *bucket) next() *IOExample {
	b.mu.Lock()
	defer b.mu.Unlock()
	ex := b.examples[b.cursor]
	b.cursor = (b.cursor + 1) % len(b.examples)
	return ex
}

func (b *bucket) peek() *IOExample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.examples[b.cursor]
}

// NewStub builds a stub from examples. Anti-examples are ignored.
func NewStub(examples ...*IOExample) *Stub {
	return newStub(defaultEnv(), examples...)
}

func newStub(e *env, examples ...*IOExample) *Stub {
	s := &Stub{
		examples: append([]*IOExample(nil), examples...),
		root:     &trieNode{},
		env:      e,
	}
	for _, ex := range examples {
		if ex == nil || ex.IsAntiExample {
			continue
		}
		node := s.root
		for _, key := range keyPath(ex.context, ex.inputs) {
			if node.children == nil {
				node.children = make(map[any]*trieNode)
			}
			child, ok := node.children[key]
			if !ok {
				child = &trieNode{}
				node.children[key] = child
			}
			node = child
		}
		if node.bucket == nil {
			node.bucket = &bucket{}
		}
		node.bucket.examples = append(node.bucket.examples, ex)
	}
	s.Spy = spy.New(call.Func(s.serve))
	return s
}

func keyPath(receiver any, inputs []any) []any {
	path := make([]any, 0, len(inputs)+1)
	path = append(path, value.Identity(receiver))
	for _, in := range inputs {
		path = append(path, value.Identity(in))
	}
	return path
}

func (s *Stub) lookup(receiver any, inputs []any) *bucket {
	node := s.root
	for _, key := range keyPath(receiver, inputs) {
		child, ok := node.children[key]
		if !ok {
			return nil
		}
		node = child
	}
	return node.bucket
}

// Examples returns the examples the stub was built from, anti-examples
// included.
func (s *Stub) Examples() []*IOExample {
	return append([]*IOExample(nil), s.examples...)
}

// Find returns the example that answers (receiver, inputs) and advances
// that key's cursor. It returns nil when nothing matches.
func (s *Stub) Find(receiver any, inputs ...any) *IOExample {
	b := s.lookup(receiver, inputs)
	hit := b != nil
	s.env.tel.RecordStubLookup(context.Background(), hit)
	if !hit {
		s.env.logger.Debug("stub miss", "inputs", len(inputs))
		return nil
	}
	return b.next()
}

// Peek returns the example the next matching call would be answered with,
// without advancing the cursor.
func (s *Stub) Peek(receiver any, inputs ...any) *IOExample {
	b := s.lookup(receiver, inputs)
	if b == nil {
		return nil
	}
	return b.peek()
}

// PeekAt returns the output the next matching call would produce. ok is
// false when nothing matches.
func (s *Stub) PeekAt(receiver any, inputs ...any) (output any, ok bool) {
	ex := s.Peek(receiver, inputs...)
	if ex == nil {
		return nil, false
	}
	out, err := ex.Output()
	if err != nil {
		return nil, false
	}
	return out, true
}

// serve answers one invocation from the matching example, in the style
// the example declares. Unmatched calls return nothing.
func (s *Stub) serve(receiver any, inputs []any) (any, error) {
	ex := s.Find(receiver, inputs...)
	if ex == nil {
		return nil, nil
	}
	out, err := ex.Output()
	if err != nil {
		return nil, nil
	}

	if ex.Fails() {
		thrown, _ := out.(error)
		if thrown == nil {
			thrown = errNilThrow
		}
		if ex.OutputsFuture() {
			return future.Rejected(thrown), nil
		}
		return nil, thrown
	}
	if ex.OutputsFuture() {
		return future.Resolved(out), nil
	}
	return out, nil
}
