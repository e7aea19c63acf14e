package component

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
)

// Factory constructs a controller. The dependency bag is fully populated
// before the factory runs; factories that need nothing may ignore it.
type Factory func(*Deps) Controller

// Registry maps component tag names to factories. It replaces runtime type
// lookup by name: every component is registered explicitly at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a tag. The tag must be lower-case and contain
// the dash separator that marks component tags in markup. Re-registering a
// tag is an error; component identity must be unambiguous.
func (r *Registry) Register(tag string, factory Factory) error {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if !strings.Contains(tag, "-") {
		return fmt.Errorf("component tag %q must contain a dash", tag)
	}
	if factory == nil {
		return fmt.Errorf("component tag %q registered with nil factory", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[tag]; exists {
		return fmt.Errorf("component tag %q already registered", tag)
	}
	r.factories[tag] = factory
	return nil
}

// MustRegister is Register that panics on error, for startup wiring.
func (r *Registry) MustRegister(tag string, factory Factory) {
	if err := r.Register(tag, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for a tag.
func (r *Registry) Lookup(tag string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.ToLower(tag)]
	return f, ok
}

// Tags returns the registered tag names, unordered.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		out = append(out, tag)
	}
	return out
}

// TagToType converts a dashed tag name to the conventional Go type name:
// "ticker-clock" becomes "TickerClock". Used in diagnostics so error
// messages name the type the developer was expected to register.
func TagToType(tag string) string {
	var b strings.Builder
	upper := true
	for _, r := range tag {
		if r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
