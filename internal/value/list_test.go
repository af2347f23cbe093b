package value

import "testing"

func TestListAppendAndGet(t *testing.T) {
	l := NewList()
	for i := 0; i < 100; i++ {
		l = l.Append(Number(i))
	}
	if l.Count() != 100 {
		t.Fatalf("expected count 100, got %d", l.Count())
	}
	for i := 0; i < 100; i++ {
		v, ok := l.Get(i)
		if !ok {
			t.Fatalf("missing index %d", i)
		}
		if v.(Number) != Number(i) {
			t.Errorf("index %d: expected %d, got %v", i, i, v)
		}
	}
}

func TestListAppendIsPersistent(t *testing.T) {
	base := NewList(Number(1), Number(2))
	grown := base.Append(Number(3))
	if base.Count() != 2 {
		t.Errorf("expected base unchanged at count 2, got %d", base.Count())
	}
	if grown.Count() != 3 {
		t.Errorf("expected grown at count 3, got %d", grown.Count())
	}
}

func TestListPrependAndRest(t *testing.T) {
	l := NewList(Number(2), Number(3))
	l = l.Prepend(Number(1))
	got := l.Slice()
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].(Number) != Number(w) {
			t.Errorf("index %d: expected %v, got %v", i, w, got[i])
		}
	}
	rest := l.Rest()
	if rest.Count() != 2 {
		t.Errorf("expected rest count 2, got %d", rest.Count())
	}
	first, _ := rest.Get(0)
	if first.(Number) != Number(2) {
		t.Errorf("expected rest[0] = 2, got %v", first)
	}
}

func TestListConcatAndReverse(t *testing.T) {
	a := NewList(Number(1), Number(2))
	b := NewList(Number(3), Number(4))
	c := a.Concat(b)
	if c.Count() != 4 {
		t.Fatalf("expected concat count 4, got %d", c.Count())
	}
	r := c.Reverse()
	first, _ := r.Get(0)
	if first.(Number) != Number(4) {
		t.Errorf("expected reversed[0] = 4, got %v", first)
	}
}
