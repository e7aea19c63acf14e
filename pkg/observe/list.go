package observe

// List is an observable sequence cell. Every committed mutation goes through
// its mutators and notifies; the backing slice is never handed out.
type List[T any] struct {
	cell
	items []T
}

// NewList creates a list cell with the given initial items.
func NewList[T any](items ...T) *List[T] {
	return &List[T]{items: items}
}

// Get returns a copy of the current items. Mutating the returned slice does
// not touch the cell.
func (l *List[T]) Get() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Set replaces the whole list. An equal replacement does not notify.
func (l *List[T]) Set(items []T) {
	l.mu.Lock()
	changed := !equals(l.items, items)
	if changed {
		l.items = items
	}
	l.mu.Unlock()

	if changed {
		l.fire()
	}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the item at index and whether it exists.
func (l *List[T]) At(index int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[index], true
}

// Append adds items to the end of the list.
func (l *List[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	l.mu.Lock()
	l.items = append(l.items, items...)
	l.mu.Unlock()
	l.fire()
}

// InsertAt inserts an item; out-of-range indexes clamp to the list ends.
func (l *List[T]) InsertAt(index int, item T) {
	l.mu.Lock()
	if index < 0 {
		index = 0
	}
	if index > len(l.items) {
		index = len(l.items)
	}
	l.items = append(l.items[:index], append([]T{item}, l.items[index:]...)...)
	l.mu.Unlock()
	l.fire()
}

// RemoveAt removes the item at index. Out-of-range indexes are ignored.
func (l *List[T]) RemoveAt(index int) {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	l.mu.Unlock()
	l.fire()
}

// SetAt replaces the item at index. Equal replacements do not notify.
func (l *List[T]) SetAt(index int, item T) {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return
	}
	changed := !equals(l.items[index], item)
	if changed {
		l.items[index] = item
	}
	l.mu.Unlock()

	if changed {
		l.fire()
	}
}

// Clear removes all items. Clearing an empty list does not notify.
func (l *List[T]) Clear() {
	l.mu.Lock()
	changed := len(l.items) > 0
	if changed {
		l.items = nil
	}
	l.mu.Unlock()

	if changed {
		l.fire()
	}
}

// AnyValue returns the current slice untyped (expr.Cell).
func (l *List[T]) AnyValue() any {
	return l.Get()
}
