package observe

import (
	"reflect"
	"testing"
)

func TestValueSetNotifiesOnce(t *testing.T) {
	v := NewValue(0)
	hits := 0
	v.bind(func() { hits++ })

	v.Set(1)
	if hits != 1 {
		t.Errorf("notify ran %d times after change, want 1", hits)
	}
	if v.Get() != 1 {
		t.Errorf("Get = %d, want 1", v.Get())
	}
}

func TestValueSetSameValueDoesNotNotify(t *testing.T) {
	v := NewValue("a")
	hits := 0
	v.bind(func() { hits++ })

	v.Set("a")
	if hits != 0 {
		t.Errorf("notify ran %d times on unchanged set, want 0", hits)
	}
}

func TestValueUpdate(t *testing.T) {
	v := NewValue(10)
	hits := 0
	v.bind(func() { hits++ })

	v.Update(func(n int) int { return n + 5 })
	if v.Get() != 15 {
		t.Errorf("Get = %d, want 15", v.Get())
	}
	if hits != 1 {
		t.Errorf("notify ran %d times, want 1", hits)
	}

	v.Update(func(n int) int { return n })
	if hits != 1 {
		t.Error("identity update notified")
	}
}

func TestValueBindIsIdempotent(t *testing.T) {
	v := NewValue(0)
	first, second := 0, 0
	v.bind(func() { first++ })
	v.bind(func() { second++ }) // ignored: already bound

	v.Set(1)
	if first != 1 || second != 0 {
		t.Errorf("first=%d second=%d, want 1 and 0", first, second)
	}
}

func TestValueSetAny(t *testing.T) {
	v := NewValue(0)
	// Template expressions produce float64 for all numbers.
	if err := v.SetAny(float64(5)); err != nil {
		t.Fatalf("SetAny: %v", err)
	}
	if v.Get() != 5 {
		t.Errorf("Get = %d, want 5", v.Get())
	}

	s := NewValue("")
	if err := s.SetAny(42); err == nil {
		t.Error("SetAny(int) on string cell succeeded, want error")
	}
}

func TestListOperations(t *testing.T) {
	l := NewList(1, 2)
	hits := 0
	l.bind(func() { hits++ })

	l.Append(3)
	l.InsertAt(0, 0)
	l.SetAt(1, 10)
	l.RemoveAt(3)

	want := []int{0, 10, 2}
	if got := l.Get(); !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %v, want %v", got, want)
	}
	if hits != 4 {
		t.Errorf("notify ran %d times, want 4", hits)
	}

	if v, ok := l.At(1); !ok || v != 10 {
		t.Errorf("At(1) = %v, %v", v, ok)
	}
	if _, ok := l.At(99); ok {
		t.Error("At(99) reported ok")
	}

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len = %d after Clear", l.Len())
	}
}

func TestListGetIsCopy(t *testing.T) {
	l := NewList("a", "b")
	got := l.Get()
	got[0] = "mutated"
	if v, _ := l.At(0); v != "a" {
		t.Error("mutating the returned slice changed the cell")
	}
}

func TestMapOperations(t *testing.T) {
	m := NewMap(map[string]int{"a": 1})
	hits := 0
	m.bind(func() { hits++ })

	m.SetKey("b", 2)
	if v, ok := m.Key("b"); !ok || v != 2 {
		t.Errorf("Key(b) = %v, %v", v, ok)
	}

	m.DeleteKey("a")
	if _, ok := m.Key("a"); ok {
		t.Error("a still present after DeleteKey")
	}
	if hits != 2 {
		t.Errorf("notify ran %d times, want 2", hits)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

type clock struct {
	Seconds *Value[int]
	Label   *Value[string]
	hidden  *Value[int]
	Plain   int
	Inner   *gauge
}

type gauge struct {
	Level *Value[float64]
}

func TestObserveBindsAllCells(t *testing.T) {
	c := &clock{
		Seconds: NewValue(0),
		Label:   NewValue(""),
		hidden:  NewValue(0),
		Inner:   &gauge{Level: NewValue(0.0)},
	}

	hits := 0
	Observe(c, func() { hits++ })

	c.Seconds.Set(1)
	c.Label.Set("x")
	c.Inner.Level.Set(2.5)

	if hits != 3 {
		t.Errorf("notify ran %d times, want 3 (all exported cells bound)", hits)
	}

	// Unexported cells are not reachable and stay unbound.
	c.hidden.Set(9)
	if hits != 3 {
		t.Errorf("unexported cell notified: hits = %d", hits)
	}
}

func TestObserveBindsByValueCells(t *testing.T) {
	type meter struct {
		Count Value[int]
		Name  Value[string]
	}
	m := &meter{}

	hits := 0
	Observe(m, func() { hits++ })

	m.Count.Set(1)
	m.Name.Set("x")
	if hits != 2 {
		t.Errorf("notify ran %d times, want 2 (by-value cells bound)", hits)
	}
}

func TestObserveHandlesCycles(t *testing.T) {
	type nodeT struct {
		Value *Value[int]
		Next  *nodeT
	}
	a := &nodeT{Value: NewValue(1)}
	b := &nodeT{Value: NewValue(2), Next: a}
	a.Next = b

	hits := 0
	Observe(a, func() { hits++ }) // must terminate

	a.Value.Set(10)
	b.Value.Set(20)
	if hits != 2 {
		t.Errorf("notify ran %d times, want 2", hits)
	}
}
