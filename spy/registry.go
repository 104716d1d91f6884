package spy

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/ariel-frischer/quacker/call"
	"github.com/ariel-frischer/quacker/value"
)

type registryKey struct {
	object any
	member string
}

type installed struct {
	object   any
	original any
	spy      *Spy
}

// registry remembers which members currently have a spy installed so they
// can be restored later.
var registry = struct {
	sync.Mutex
	entries map[registryKey]installed
}{entries: make(map[registryKey]installed)}

// On replaces the member key of object with a new Spy wrapping the current
// member, and returns the spy.
//
// The registry holds object, the original member and the spy until Restore
// or RestoreAll removes the entry. Tests should restore in t.Cleanup.
func On(object any, key string) (*Spy, error) {
	original, ok := value.Lookup(object, key)
	if !ok {
		return nil, fmt.Errorf("spy on %q: no such member on %T", key, object)
	}
	target, err := call.Adapt(original)
	if err != nil {
		return nil, fmt.Errorf("spy on %q: %w", key, err)
	}
	return OnWith(object, key, New(target))
}

// OnWith installs s in place of the member key of object.
func OnWith(object any, key string, s *Spy) (*Spy, error) {
	original, ok := value.Lookup(object, key)
	if !ok {
		return nil, fmt.Errorf("spy on %q: no such member on %T", key, object)
	}
	if err := value.Set(object, key, replacement(original, s)); err != nil {
		return nil, fmt.Errorf("spy on %q: %w", key, err)
	}

	k := registryKey{object: value.Identity(object), member: key}
	registry.Lock()
	if prev, ok := registry.entries[k]; ok {
		// Spying twice keeps the first original so Restore undoes both.
		original = prev.original
	}
	registry.entries[k] = installed{object: object, original: original, spy: s}
	registry.Unlock()

	slog.Debug("spy installed", "member", key, "object", fmt.Sprintf("%T", object))
	return s, nil
}

// Restore puts back the member that On replaced and returns the spy that
// was installed. It returns false when no spy is installed for the pair.
func Restore(object any, key string) (*Spy, bool) {
	k := registryKey{object: value.Identity(object), member: key}
	registry.Lock()
	defer registry.Unlock()

	entry, ok := registry.entries[k]
	if !ok {
		return nil, false
	}
	if err := value.Set(object, key, entry.original); err != nil {
		slog.Warn("spy restore failed", "member", key, "error", err)
		return nil, false
	}
	delete(registry.entries, k)

	slog.Debug("spy restored", "member", key, "object", fmt.Sprintf("%T", object))
	return entry.spy, true
}

// RestoreAll restores every installed spy and reports how many members
// were put back.
func RestoreAll() int {
	registry.Lock()
	defer registry.Unlock()

	restored := 0
	for k, entry := range registry.entries {
		if err := value.Set(entry.object, k.member, entry.original); err != nil {
			slog.Warn("spy restore failed", "member", k.member, "error", err)
			continue
		}
		delete(registry.entries, k)
		restored++
	}
	return restored
}

func installedCount() int {
	registry.Lock()
	defer registry.Unlock()
	return len(registry.entries)
}

// replacement returns a value that can stand in the slot original came
// from. Plain Go functions get a trampoline of the identical type.
func replacement(original any, s *Spy) any {
	switch original.(type) {
	case call.Func:
		return call.Func(s.Call)
	case call.Callable:
		return s
	}
	rv := reflect.ValueOf(original)
	if rv.Kind() == reflect.Func {
		return s.Func(rv.Type()).Interface()
	}
	return s
}
