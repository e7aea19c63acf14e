package observe

// Map is an observable map cell. Every committed mutation through SetKey or
// DeleteKey notifies; writes through the map returned by Get are not
// detected.
type Map[K comparable, V any] struct {
	cell
	items map[K]V
}

// NewMap creates a map cell, optionally seeded with initial entries.
func NewMap[K comparable, V any](initial map[K]V) *Map[K, V] {
	m := &Map[K, V]{items: make(map[K]V, len(initial))}
	for k, v := range initial {
		m.items[k] = v
	}
	return m
}

// Get returns the current backing map.
func (m *Map[K, V]) Get() map[K]V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items
}

// Key returns the value for k and whether it exists.
func (m *Map[K, V]) Key(k K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[k]
	return v, ok
}

// SetKey commits one entry. Rewriting an equal value does not notify.
func (m *Map[K, V]) SetKey(k K, v V) {
	m.mu.Lock()
	old, ok := m.items[k]
	changed := !ok || !equals(old, v)
	if changed {
		m.items[k] = v
	}
	m.mu.Unlock()

	if changed {
		m.fire()
	}
}

// DeleteKey removes an entry. Deleting a missing key does not notify.
func (m *Map[K, V]) DeleteKey(k K) {
	m.mu.Lock()
	_, ok := m.items[k]
	if ok {
		delete(m.items, k)
	}
	m.mu.Unlock()

	if ok {
		m.fire()
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// AnyValue returns the current map untyped (expr.Cell).
func (m *Map[K, V]) AnyValue() any {
	return m.Get()
}
