package observe

import (
	"fmt"
	"reflect"
	"sync"
)

// cell provides change-notification plumbing shared by all cell types.
type cell struct {
	mu     sync.RWMutex
	notify func()
}

// binder is the package-internal binding interface Observe uses.
type binder interface {
	bind(fn func())
}

// bind installs the change callback. Binding an already-bound cell is a
// no-op, so re-observing a controller never double-registers.
func (c *cell) bind(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notify == nil {
		c.notify = fn
	}
}

// fire invokes the bound callback, if any, synchronously.
func (c *cell) fire() {
	c.mu.RLock()
	fn := c.notify
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Value is an observable scalar cell.
type Value[T any] struct {
	cell
	value T
}

// NewValue creates a cell holding the initial value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value
}

// Set commits a new value. Setting the current value again does not notify.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	changed := !equals(v.value, value)
	if changed {
		v.value = value
	}
	v.mu.Unlock()

	if changed {
		v.fire()
	}
}

// Update atomically transforms the value.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	next := fn(v.value)
	changed := !equals(v.value, next)
	if changed {
		v.value = next
	}
	v.mu.Unlock()

	if changed {
		v.fire()
	}
}

// AnyValue returns the current value untyped. It makes Value usable from
// template expressions (expr.Cell).
func (v *Value[T]) AnyValue() any {
	return v.Get()
}

// SetAny assigns an untyped value, converting between numeric types
// (template input expressions produce float64 for all numbers). It is how
// component inputs land on cell-typed controller fields. Non-numeric
// conversions are rejected: Go would happily turn a number into a one-rune
// string, which is never what an input expression means.
func (v *Value[T]) SetAny(val any) error {
	var zero T
	tt := reflect.TypeOf(&zero).Elem()

	if val == nil {
		v.Set(zero)
		return nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(tt) {
		v.Set(rv.Interface().(T))
		return nil
	}
	if numericKind(rv.Kind()) && numericKind(tt.Kind()) && rv.Type().ConvertibleTo(tt) {
		v.Set(rv.Convert(tt).Interface().(T))
		return nil
	}
	return fmt.Errorf("cannot assign %T to cell of %s", val, tt)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// equals provides type-appropriate equality: == for common comparable types,
// reflect.DeepEqual otherwise.
func equals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
