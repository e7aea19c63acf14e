package observe

import "reflect"

// Observe binds every cell reachable from target's exported fields to the
// onChange callback. Cells may be held by pointer or by value; nested structs
// and pointers to structs are walked recursively; function-typed fields are
// skipped; plain (non-cell) fields are not reactive. Cells that are already
// bound keep their existing callback, so observing the same controller twice
// is a no-op.
func Observe(target any, onChange func()) {
	if target == nil || onChange == nil {
		return
	}
	seen := make(map[uintptr]bool)
	walk(reflect.ValueOf(target), onChange, seen)
}

func walk(v reflect.Value, onChange func(), seen map[uintptr]bool) {
	if !v.IsValid() {
		return
	}

	if v.Kind() == reflect.Pointer && v.IsNil() {
		return
	}

	// A cell field is a binding point, not something to descend into.
	if v.CanInterface() {
		if b, ok := v.Interface().(binder); ok {
			b.bind(onChange)
			return
		}
	}
	// Cells held by value bind through their address.
	if v.Kind() == reflect.Struct && v.CanAddr() && v.Addr().CanInterface() {
		if b, ok := v.Addr().Interface().(binder); ok {
			b.bind(onChange)
			return
		}
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || seen[v.Pointer()] {
			return
		}
		seen[v.Pointer()] = true
		walk(v.Elem(), onChange, seen)
	case reflect.Interface:
		if v.IsNil() {
			return
		}
		walk(v.Elem(), onChange, seen)
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			f := v.Field(i)
			if f.Kind() == reflect.Func {
				continue
			}
			walk(f, onChange, seen)
		}
	}
}
