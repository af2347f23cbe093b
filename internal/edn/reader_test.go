package edn

import (
	"testing"

	"github.com/hflisp/calcit/internal/cirru"
)

// These exercise Parse/NodeToValue's conversion correctness. There is no EDN
// writer in this package (nothing serializes a Value back to EDN text), so
// a literal parse(format(x)) == x round trip isn't constructible here; the
// Cirru layer underneath has its own round-trip coverage in
// internal/cirru/reader_test.go.
//
// Parse always folds a whole line into an Expr (even a single bare token),
// so scalar leaves are exercised directly through NodeToValue on a leaf
// Node rather than through Parse, matching how leafToValue actually gets
// called in practice.

func TestNodeToValueScalars(t *testing.T) {
	cases := []struct {
		leaf string
		kind Kind
	}{
		{"nil", KindNil},
		{"true", KindBool},
		{"false", KindBool},
		{"42", KindNumber},
		{":tag", KindTag},
		{"sym", KindSymbol},
	}
	for _, c := range cases {
		v, err := NodeToValue(cirru.NewLeaf(c.leaf))
		if err != nil {
			t.Fatalf("NodeToValue(%q): %v", c.leaf, err)
		}
		if v.Kind != c.kind {
			t.Errorf("NodeToValue(%q).Kind = %v, want %v", c.leaf, v.Kind, c.kind)
		}
	}
}

func TestParseBareLineWrapsAsOneItemVector(t *testing.T) {
	// A top-level line with a single token still folds into a 1-child Expr
	// per Cirru's line-folding rule (internal/cirru.Parse), so it converts
	// to a 1-item vector wrapping the scalar rather than the scalar itself.
	v, err := Parse("nil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindVector || len(v.Items) != 1 || v.Items[0].Kind != KindNil {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestParseVectorAndSet(t *testing.T) {
	v, err := Parse("[] 1 2 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind != KindVector || len(v.Items) != 3 {
		t.Fatalf("unexpected vector: %#v", v)
	}
	if v.Items[0].Number != 1 || v.Items[2].Number != 3 {
		t.Fatalf("unexpected items: %#v", v.Items)
	}

	s, err := Parse("#{} :a :b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Kind != KindSet || len(s.Items) != 2 {
		t.Fatalf("unexpected set: %#v", s)
	}
}

func TestParseMap(t *testing.T) {
	m, err := Parse("{}\n  :name \"bob\n  :age 7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind != KindMap {
		t.Fatalf("expected a map, got %#v", m)
	}
	got, ok := m.Get("name")
	if !ok || got.Kind != KindStr {
		t.Fatalf("expected a :name string entry, got %#v (ok=%v)", got, ok)
	}
	age, ok := m.Get("age")
	if !ok || age.Number != 7 {
		t.Fatalf("expected an :age 7 entry, got %#v (ok=%v)", age, ok)
	}
}

func TestParseRecord(t *testing.T) {
	r, err := Parse("%{} :point\n  :x 1\n  :y 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Kind != KindRecord || r.Tag != "point" {
		t.Fatalf("unexpected record: %#v", r)
	}
	if len(r.Fields) != 2 || len(r.Vals) != 2 {
		t.Fatalf("expected 2 fields, got %#v / %#v", r.Fields, r.Vals)
	}
}

func TestToValueConvertsNestedStructures(t *testing.T) {
	v, err := Parse("[] 1 :a nil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cv := v.ToValue()
	lst, ok := cv.(interface{ Count() int })
	if !ok || lst.Count() != 3 {
		t.Fatalf("expected a 3-element list-like value, got %#v", cv)
	}
}
