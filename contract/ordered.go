package contract

// ordered is a name-keyed collection that remembers declaration order.
// Putting an existing name replaces the entry in place.
type ordered[T any] struct {
	names []string
	items map[string]T
}

func (o *ordered[T]) put(name string, v T) {
	if o.items == nil {
		o.items = make(map[string]T)
	}
	if _, ok := o.items[name]; !ok {
		o.names = append(o.names, name)
	}
	o.items[name] = v
}

func (o *ordered[T]) get(name string) (T, bool) {
	v, ok := o.items[name]
	return v, ok
}

func (o *ordered[T]) values() []T {
	out := make([]T, len(o.names))
	for i, name := range o.names {
		out[i] = o.items[name]
	}
	return out
}

func (o *ordered[T]) len() int {
	return len(o.names)
}
