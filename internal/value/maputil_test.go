package value

import "testing"

func TestMapAssocGetDissoc(t *testing.T) {
	m := NewMap()
	m = m.Assoc(NewTag("a"), Number(1))
	m = m.Assoc(NewTag("b"), Number(2))
	if m.Count() != 2 {
		t.Fatalf("expected count 2, got %d", m.Count())
	}
	v, ok := m.Get(NewTag("a"))
	if !ok || v.(Number) != Number(1) {
		t.Errorf("expected a=1, got %v ok=%v", v, ok)
	}
	m2 := m.Dissoc(NewTag("a"))
	if m2.Count() != 1 {
		t.Errorf("expected count 1 after dissoc, got %d", m2.Count())
	}
	if _, ok := m2.Get(NewTag("a")); ok {
		t.Error("expected a to be gone after dissoc")
	}
	// original map unaffected by dissoc (persistence)
	if m.Count() != 2 {
		t.Errorf("expected original map untouched, got count %d", m.Count())
	}
}

func TestMapManyKeysSurviveCollisionSplitting(t *testing.T) {
	m := NewMap()
	for i := 0; i < 500; i++ {
		m = m.Assoc(Number(i), Str("v"))
	}
	if m.Count() != 500 {
		t.Fatalf("expected 500 entries, got %d", m.Count())
	}
	for i := 0; i < 500; i++ {
		if _, ok := m.Get(Number(i)); !ok {
			t.Errorf("missing key %d", i)
		}
	}
}

func TestSetIncludeExcludeUnion(t *testing.T) {
	s := SetFromItems(Number(1), Number(2), Number(3))
	if s.Count() != 3 {
		t.Fatalf("expected count 3, got %d", s.Count())
	}
	if !s.Contains(Number(2)) {
		t.Error("expected set to contain 2")
	}
	s2 := s.Exclude(Number(2))
	if s2.Contains(Number(2)) {
		t.Error("expected 2 excluded")
	}
	other := SetFromItems(Number(3), Number(4))
	u := s.Union(other)
	if u.Count() != 4 {
		t.Errorf("expected union count 4, got %d", u.Count())
	}
	inter := s.Intersection(other)
	if inter.Count() != 1 || !inter.Contains(Number(3)) {
		t.Errorf("expected intersection {3}, got count %d", inter.Count())
	}
	diff := s.Difference(other)
	if diff.Count() != 2 {
		t.Errorf("expected difference count 2, got %d", diff.Count())
	}
}

func TestMapEqualIgnoresOrder(t *testing.T) {
	a := MapFromPairs(NewTag("x"), Number(1), NewTag("y"), Number(2))
	b := MapFromPairs(NewTag("y"), Number(2), NewTag("x"), Number(1))
	if !Equal(a, b) {
		t.Error("expected maps built in different insertion order to be equal")
	}
	if HashOf(a) != HashOf(b) {
		t.Error("expected equal maps to hash equal")
	}
}

func TestSetEqualIgnoresOrder(t *testing.T) {
	a := SetFromItems(Number(1), Number(2), Number(3))
	b := SetFromItems(Number(3), Number(2), Number(1))
	if !Equal(a, b) {
		t.Error("expected sets built in different insertion order to be equal")
	}
}
