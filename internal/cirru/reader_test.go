package cirru

import "testing"

func TestParseFlatLine(t *testing.T) {
	nodes, err := Parse("defn add (a b)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(nodes))
	}
	top := nodes[0]
	if top.IsLeaf || len(top.Expr) != 3 {
		t.Fatalf("expected a 3-child expr, got %#v", top)
	}
	if top.Expr[0].Leaf != "defn" || top.Expr[1].Leaf != "add" {
		t.Fatalf("unexpected leaves: %#v", top.Expr)
	}
	params := top.Expr[2]
	if params.IsLeaf || len(params.Expr) != 2 || params.Expr[0].Leaf != "a" || params.Expr[1].Leaf != "b" {
		t.Fatalf("unexpected param list: %#v", params)
	}
}

func TestParseFoldsIndentedLineIntoTrailingChild(t *testing.T) {
	nodes, err := Parse("defn add (a b)\n  + a b\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 top-level form, got %d", len(nodes))
	}
	top := nodes[0]
	if len(top.Expr) != 4 {
		t.Fatalf("expected the nested line folded in as a 4th child, got %#v", top.Expr)
	}
	body := top.Expr[3]
	if body.IsLeaf || len(body.Expr) != 3 {
		t.Fatalf("expected body to be a 3-token expr, got %#v", body)
	}
	if body.Expr[0].Leaf != "+" || body.Expr[1].Leaf != "a" || body.Expr[2].Leaf != "b" {
		t.Fatalf("unexpected body tokens: %#v", body.Expr)
	}
}

func TestParseRejectsIndentationJump(t *testing.T) {
	_, err := Parse("defn add (a b)\n    + a b\n")
	if err == nil {
		t.Fatal("expected an error for a 2-level indentation jump")
	}
}

// TestFormatRoundTripsTrailingNestedForm exercises spec.md §8 invariant 1
// ("parse(format(cirru)) = cirru as trees") for a shape representative of
// real calcit.core source: nested branches in trailing position, which is
// what Cirru's own indentation convention always produces.
func TestFormatRoundTripsTrailingNestedForm(t *testing.T) {
	src := "defn classify (x)\n  if (> x 0) (:pos) (:neg)\n"
	original, err := Parse(src)
	if err != nil {
		t.Fatalf("parsing source: %v", err)
	}

	formatted := Format(original)
	reparsed, err := Parse(formatted)
	if err != nil {
		t.Fatalf("parsing formatted output %q: %v", formatted, err)
	}

	if len(original) != len(reparsed) {
		t.Fatalf("top-level form count changed: %d vs %d", len(original), len(reparsed))
	}
	for i := range original {
		if !Equal(original[i], reparsed[i]) {
			t.Fatalf("form %d did not round-trip:\n  original: %#v\n  reparsed: %#v", i, original[i], reparsed[i])
		}
	}
}

func TestFormatRoundTripsMultipleTopLevelForms(t *testing.T) {
	src := "defn inc (x)\n  + x 1\n\ndefn dec (x)\n  - x 1\n"
	original, err := Parse(src)
	if err != nil {
		t.Fatalf("parsing source: %v", err)
	}
	if len(original) != 2 {
		t.Fatalf("expected 2 top-level forms, got %d", len(original))
	}

	reparsed, err := Parse(Format(original))
	if err != nil {
		t.Fatalf("parsing formatted output: %v", err)
	}
	if len(reparsed) != 2 {
		t.Fatalf("expected 2 top-level forms after round-trip, got %d", len(reparsed))
	}
	for i := range original {
		if !Equal(original[i], reparsed[i]) {
			t.Fatalf("form %d did not round-trip", i)
		}
	}
}

func TestEqualDistinguishesLeafAndExpr(t *testing.T) {
	if Equal(NewLeaf("a"), NewExpr(NewLeaf("a"))) {
		t.Fatal("a leaf and a 1-element expr wrapping it must not compare equal")
	}
	if !Equal(NewExpr(NewLeaf("a"), NewLeaf("b")), NewExpr(NewLeaf("a"), NewLeaf("b"))) {
		t.Fatal("structurally identical exprs must compare equal")
	}
}
