// Package store provides the process-wide key-value state shared between
// components.
//
// Writes notify per-key subscribers synchronously. Components subscribe
// through their injected state accessor when they read a key, so a write from
// one component re-renders exactly the components that depend on that key.
package store

import (
	"log/slog"
	"sync"
)

// Backend persists store contents. Implementations must be safe for use from
// a single writer; the store serializes all calls.
type Backend interface {
	// Load returns the persisted contents, or an empty map.
	Load() (map[string]any, error)

	// Save persists the full contents after a write.
	Save(values map[string]any) error
}

// Store is the global application state: a single mapping with per-key
// change subscriptions.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	subs    map[string]map[int]func()
	nextSub int

	backend Backend
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackend attaches a persistence backend; its contents are loaded on
// construction and every committed write is saved through it.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		values: make(map[string]any),
		subs:   make(map[string]map[int]func()),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.backend != nil {
		loaded, err := s.backend.Load()
		if err != nil {
			s.log.Warn("state backend load failed", "err", err)
		}
		for k, v := range loaded {
			s.values[k] = v
		}
	}
	return s
}

// Get returns the value for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Create sets key to initial only if it is absent. Reports whether the key
// was created; creation notifies the key's subscribers.
func (s *Store) Create(key string, initial any) bool {
	s.mu.Lock()
	if _, exists := s.values[key]; exists {
		s.mu.Unlock()
		return false
	}
	s.values[key] = initial
	s.mu.Unlock()

	s.persist()
	s.notify(key)
	return true
}

// Update writes key unconditionally and notifies the key's subscribers.
func (s *Store) Update(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	s.persist()
	s.notify(key)
}

// Delete removes key. Deleting a missing key does not notify.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	_, existed := s.values[key]
	if existed {
		delete(s.values, key)
	}
	s.mu.Unlock()

	if existed {
		s.persist()
		s.notify(key)
	}
}

// All returns a copy of the full contents.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Subscribe registers fn to run after every committed write to key.
// The returned cancel function removes the subscription.
func (s *Store) Subscribe(key string, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func())
	}
	s.subs[key][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[key], id)
	}
}

// notify invokes key's subscribers synchronously, outside the store lock.
func (s *Store) notify(key string) {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// persist saves through the backend, best effort.
func (s *Store) persist() {
	if s.backend == nil {
		return
	}
	if err := s.backend.Save(s.All()); err != nil {
		s.log.Warn("state backend save failed", "err", err)
	}
}
