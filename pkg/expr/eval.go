package expr

import (
	"fmt"
	"reflect"
	"strconv"
)

// Eval evaluates a parsed expression against the scope.
func Eval(e Expr, s *Scope) (any, error) {
	return e.eval(s)
}

// EvalString compiles (with caching) and evaluates src against the scope.
func EvalString(src string, s *Scope) (any, error) {
	e, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return e.eval(s)
}

func (n *litNode) eval(*Scope) (any, error) {
	return n.val, nil
}

func (n *identNode) eval(s *Scope) (any, error) {
	v, ok := s.Lookup(n.name)
	if !ok {
		return nil, fmt.Errorf("undefined: %s", n.name)
	}
	return v, nil
}

func (n *memberNode) eval(s *Scope) (any, error) {
	obj, err := n.obj.eval(s)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("cannot read %q of nil", n.name)
	}
	v, ok := lookupMember(obj, n.name)
	if !ok {
		return nil, fmt.Errorf("no member %q on %T", n.name, obj)
	}
	return v, nil
}

func (n *indexNode) eval(s *Scope) (any, error) {
	obj, err := n.obj.eval(s)
	if err != nil {
		return nil, err
	}
	idx, err := n.idx.eval(s)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(unwrap(obj))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		i, ok := toInt(idx)
		if !ok {
			return nil, fmt.Errorf("non-numeric index %v", idx)
		}
		if i < 0 || i >= rv.Len() {
			return nil, fmt.Errorf("index %d out of range (len %d)", i, rv.Len())
		}
		if rv.Kind() == reflect.String {
			return string(rv.Index(i).Interface().(byte)), nil
		}
		return unwrap(rv.Index(i).Interface()), nil
	case reflect.Map:
		key := reflect.ValueOf(idx)
		kt := rv.Type().Key()
		if !key.IsValid() {
			return nil, fmt.Errorf("nil map key")
		}
		if key.Type() != kt {
			if !key.Type().ConvertibleTo(kt) {
				return nil, fmt.Errorf("bad map key type %T", idx)
			}
			key = key.Convert(kt)
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, nil
		}
		return unwrap(v.Interface()), nil
	default:
		return nil, fmt.Errorf("cannot index %T", obj)
	}
}

func (n *callNode) eval(s *Scope) (any, error) {
	callee, err := n.callee.eval(s)
	if err != nil {
		return nil, err
	}
	fn := reflect.ValueOf(callee)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("not callable: %T", callee)
	}
	args := make([]any, len(n.args))
	for i, a := range n.args {
		v, err := a.eval(s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return callFunc(fn, args)
}

// callFunc invokes fn with loosely-typed args, converting numbers to the
// parameter types. The last return value is split off when it is an error.
func callFunc(fn reflect.Value, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("call panicked: %v", r)
		}
	}()

	t := fn.Type()
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, fmt.Errorf("want at least %d args, got %d", t.NumIn()-1, len(args))
		}
	} else if len(args) != t.NumIn() {
		return nil, fmt.Errorf("want %d args, got %d", t.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		in[i], err = convertArg(a, pt)
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
	}

	out := fn.Call(in)
	if len(out) > 0 {
		if last := out[len(out)-1]; last.Type() == errType {
			if !last.IsNil() {
				return nil, last.Interface().(error)
			}
			out = out[:len(out)-1]
		}
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, nil
	}
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

func convertArg(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(a)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if av.Type().ConvertibleTo(pt) {
		return av.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", a, pt)
}

func (n *unaryNode) eval(s *Scope) (any, error) {
	x, err := n.x.eval(s)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "!":
		return !Truthy(x), nil
	case "-":
		f, ok := toFloat(x)
		if !ok {
			return nil, fmt.Errorf("cannot negate %T", x)
		}
		return -f, nil
	}
	return nil, fmt.Errorf("unknown unary operator %q", n.op)
}

func (n *binaryNode) eval(s *Scope) (any, error) {
	// Short-circuit logical operators.
	switch n.op {
	case "&&":
		l, err := n.l.eval(s)
		if err != nil {
			return nil, err
		}
		if !Truthy(l) {
			return false, nil
		}
		r, err := n.r.eval(s)
		if err != nil {
			return nil, err
		}
		return Truthy(r), nil
	case "||":
		l, err := n.l.eval(s)
		if err != nil {
			return nil, err
		}
		if Truthy(l) {
			return true, nil
		}
		r, err := n.r.eval(s)
		if err != nil {
			return nil, err
		}
		return Truthy(r), nil
	}

	l, err := n.l.eval(s)
	if err != nil {
		return nil, err
	}
	r, err := n.r.eval(s)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return looseEqual(l, r), nil
	case "!=":
		return !looseEqual(l, r), nil
	case "+":
		if ls, ok := l.(string); ok {
			return ls + Stringify(r), nil
		}
		if rs, ok := r.(string); ok {
			return Stringify(l) + rs, nil
		}
	}

	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q needs numbers, got %T and %T", n.op, l, r)
	}
	switch n.op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return lf / rf, nil
	case "%":
		if int64(rf) == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return float64(int64(lf) % int64(rf)), nil
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	case ">=":
		return lf >= rf, nil
	}
	return nil, fmt.Errorf("unknown operator %q", n.op)
}

func (n *condNode) eval(s *Scope) (any, error) {
	c, err := n.cond.eval(s)
	if err != nil {
		return nil, err
	}
	if Truthy(c) {
		return n.then.eval(s)
	}
	return n.els.eval(s)
}

// Truthy reports whether a value counts as true in directive conditions:
// false for nil, false, zero numbers, empty strings and empty containers.
func Truthy(v any) bool {
	v = unwrap(v)
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Stringify renders a value for text interpolation. nil renders empty;
// floats drop a trailing ".0" so counters read naturally.
func Stringify(v any) string {
	v = unwrap(v)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case error:
		return t.Error()
	}
	return fmt.Sprintf("%v", v)
}

// looseEqual compares across numeric types, otherwise deep-equals.
func looseEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// toFloat widens any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
