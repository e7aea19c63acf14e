package expr

import (
	"reflect"
	"strings"
)

// Cell is implemented by observable values (pkg/observe) so that reading a
// cell-typed controller field through an expression yields the cell's current
// value, not the cell itself.
type Cell interface {
	AnyValue() any
}

// unwrap resolves observable cells to their current value.
func unwrap(v any) any {
	if c, ok := v.(Cell); ok {
		return c.AnyValue()
	}
	return v
}

// Scope is the variable lookup chain for expression evaluation: pushed frames
// (loop variables, $event) shadow the receiver, which is typically the
// component controller. Lookup on the receiver resolves exported struct
// fields and methods case-insensitively, so template-side lower-case names
// (`seconds`, `increment()`) reach Go-side `Seconds` and `Increment`.
type Scope struct {
	recv   any
	frames []map[string]any
}

// NewScope creates a scope over the given receiver. A nil receiver is valid;
// only pushed frames resolve then.
func NewScope(recv any) *Scope {
	return &Scope{recv: recv}
}

// Receiver returns the scope's receiver object.
func (s *Scope) Receiver() any {
	return s.recv
}

// Push adds a frame that shadows outer bindings. Frames must not be mutated
// after pushing.
func (s *Scope) Push(frame map[string]any) {
	s.frames = append(s.frames, frame)
}

// Pop removes the most recently pushed frame.
func (s *Scope) Pop() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Lookup resolves a name through the scope chain. Cell values unwrap to
// their current contents.
func (s *Scope) Lookup(name string) (any, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return unwrap(v), true
		}
	}
	if s.recv != nil {
		if v, ok := lookupMember(s.recv, name); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupMember resolves name against an arbitrary object: map key, exported
// struct field, or method, in that order. Field and method matching is
// case-insensitive.
func lookupMember(obj any, name string) (any, bool) {
	obj = unwrap(obj)
	if obj == nil {
		return nil, false
	}

	if m, ok := obj.(map[string]any); ok {
		if v, ok := m[name]; ok {
			return unwrap(v), true
		}
		// Fall through to methods of map types: none, so fail here.
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	// Methods are looked up on the original (possibly pointer) value.
	if v, ok := lookupMethod(rv, name); ok {
		return v, true
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByNameFunc(func(fn string) bool {
			return strings.EqualFold(fn, name)
		})
		if f.IsValid() && f.CanInterface() {
			return unwrap(f.Interface()), true
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
			if v.IsValid() {
				return unwrap(v.Interface()), true
			}
		}
	}
	return nil, false
}

// lookupMethod finds an exported method by case-insensitive name.
func lookupMethod(rv reflect.Value, name string) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	t := rv.Type()
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if m.IsExported() && strings.EqualFold(m.Name, name) {
			return rv.Method(i).Interface(), true
		}
	}
	return nil, false
}
