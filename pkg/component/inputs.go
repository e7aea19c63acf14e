package component

import (
	"fmt"
	"reflect"
	"strings"

	ierrors "github.com/iqwerty/iq/internal/errors"
	"github.com/iqwerty/iq/pkg/dom"
)

// anySetter is implemented by observable cells that accept an untyped value
// (observe.Value). Inputs landing on a cell field go through it so the
// assignment participates in change notification.
type anySetter interface {
	SetAny(value any) error
}

// copyInputs assigns the input properties the parent set on the host element
// onto matching controller fields. Matching is case-insensitive: markup-side
// `data-iq.count` reaches Go-side `Count`. Runs on first attachment only.
func copyInputs(host *dom.Node, ctrl Controller) []error {
	if len(host.Props) == 0 {
		return nil
	}
	rv := reflect.ValueOf(ctrl)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return []error{ierrors.Newf("E104", "controller %T is not a struct", ctrl)}
	}

	var errs []error
	for name, val := range host.Props {
		if err := assignField(rv, name, val); err != nil {
			errs = append(errs, ierrors.Wrap("E104", fmt.Errorf("input %q: %w", name, err)))
		}
	}
	return errs
}

func assignField(rv reflect.Value, name string, val any) error {
	f := rv.FieldByNameFunc(func(fn string) bool {
		return strings.EqualFold(fn, name)
	})
	if !f.IsValid() {
		return fmt.Errorf("no field matching %q on %s", name, rv.Type())
	}
	if !f.CanSet() {
		return fmt.Errorf("field matching %q is not settable", name)
	}

	// Cell-typed fields take the value through the cell.
	if f.CanInterface() {
		if cell, ok := f.Interface().(anySetter); ok {
			if cell == nil || f.Kind() == reflect.Pointer && f.IsNil() {
				return fmt.Errorf("cell field %q is nil; initialize it in the factory", name)
			}
			return cell.SetAny(val)
		}
	}

	if val == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	vv := reflect.ValueOf(val)
	if vv.Type().AssignableTo(f.Type()) {
		f.Set(vv)
		return nil
	}
	// Conversions are numeric only; Go would turn a number into a one-rune
	// string, which is never what an input expression means.
	if numericKind(vv.Kind()) && numericKind(f.Kind()) && vv.Type().ConvertibleTo(f.Type()) {
		f.Set(vv.Convert(f.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", val, f.Type())
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
