// Package cirru implements a reader and writer for Cirru, the
// indentation-based concrete syntax for S-expressions that Calcit source is
// written in (spec.md §4.3, glossary "Cirru"). Package value's conversion
// from a parsed Cirru tree into the Calcit value universe lives in
// ast_to_value.go of this package, grounded on the `code_to_calcit` leaf
// grammar in original_source/src/data/cirru.rs.
package cirru

// Node is either a Leaf (a token) or an Expr (an ordered list of child
// Nodes) — the two Cirru variants (`Cirru::Leaf` / `Cirru::List` in the
// original Rust source).
type Node struct {
	IsLeaf bool
	Leaf   string
	Expr   []Node
}

func NewLeaf(s string) Node { return Node{IsLeaf: true, Leaf: s} }

func NewExpr(children ...Node) Node { return Node{Expr: children} }

func (n Node) Len() int {
	if n.IsLeaf {
		return 0
	}
	return len(n.Expr)
}

// Equal is a structural comparison used by the snapshot diff (spec.md
// §4.2's "Equality is structural on Cirru plus doc string").
func Equal(a, b Node) bool {
	if a.IsLeaf != b.IsLeaf {
		return false
	}
	if a.IsLeaf {
		return a.Leaf == b.Leaf
	}
	if len(a.Expr) != len(b.Expr) {
		return false
	}
	for i := range a.Expr {
		if !Equal(a.Expr[i], b.Expr[i]) {
			return false
		}
	}
	return true
}
