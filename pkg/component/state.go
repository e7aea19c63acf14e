package component

import (
	"sync"

	"github.com/iqwerty/iq/pkg/store"
)

// StateView is a component's window onto the global state store. Reading a
// key subscribes the component to it, so a later write to that key from
// anywhere re-renders exactly the components that read it. This is the
// pub/sub refinement of the original broadcast-on-write contract: writes
// still fan out synchronously, but only to subscribed components.
type StateView struct {
	store  *store.Store
	notify func()

	mu      sync.Mutex
	cancels map[string]func()
}

func newStateView(s *store.Store, notify func()) *StateView {
	return &StateView{
		store:   s,
		notify:  notify,
		cancels: make(map[string]func()),
	}
}

// Get returns the value for key and subscribes this component to it.
func (v *StateView) Get(key string) (any, bool) {
	v.track(key)
	return v.store.Get(key)
}

// Create sets key only if absent; reports whether it was created.
// The creating component is subscribed to the key.
func (v *StateView) Create(key string, initial any) bool {
	v.track(key)
	return v.store.Create(key, initial)
}

// Update writes key unconditionally.
func (v *StateView) Update(key string, value any) {
	v.store.Update(key, value)
}

// Delete removes key.
func (v *StateView) Delete(key string) {
	v.store.Delete(key)
}

// All returns a copy of the full store contents. All does not subscribe:
// only keyed reads track dependencies.
func (v *StateView) All() map[string]any {
	return v.store.All()
}

// track subscribes the component's notify to key, once per key.
func (v *StateView) track(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.cancels[key]; ok {
		return
	}
	v.cancels[key] = v.store.Subscribe(key, v.notify)
}

// release cancels every subscription. Called when the component's mount is
// dropped.
func (v *StateView) release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key, cancel := range v.cancels {
		cancel()
		delete(v.cancels, key)
	}
}
