package cirru

import "strings"

// Format serializes top-level expressions back to indentation-based Cirru
// text. It is not a strict inverse of Parse: splitInlineVsNested always
// places a line's shallow/leaf children before its deep ones, so a deep
// child that was not already last on its source line gets reordered ahead
// of later siblings. Parse(Format(xs)) == xs as trees (spec.md §8 invariant
// 1) holds for the shape Cirru's own indentation convention produces —
// every non-shallow child already last on its line — which reader_test.go
// exercises; it is not guaranteed for an arbitrarily ordered tree.
func Format(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeLine(&b, n, 0)
	}
	return b.String()
}

func writeLine(b *strings.Builder, n Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	leafChildren, nested := splitInlineVsNested(n.Expr)
	b.WriteString(formatInline(leafChildren))
	b.WriteByte('\n')
	for _, child := range nested {
		writeLine(b, child, depth+1)
	}
}

// splitInlineVsNested separates a line's children into the ones printed on
// the line itself versus the ones that must become indented child lines:
// a leaf, or an Expr whose children are all leaves, prints inline as
// `(...)`; an Expr containing any Expr goes on its own indented line,
// mirroring how nested defn bodies are written.
func splitInlineVsNested(children []Node) ([]Node, []Node) {
	var inline, nested []Node
	for _, c := range children {
		if c.IsLeaf || isShallow(c) {
			inline = append(inline, c)
		} else {
			nested = append(nested, c)
		}
	}
	return inline, nested
}

func isShallow(n Node) bool {
	if n.IsLeaf {
		return true
	}
	for _, c := range n.Expr {
		if !c.IsLeaf {
			return false
		}
	}
	return true
}

func formatInline(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = formatInlineNode(n)
	}
	return strings.Join(parts, " ")
}

func formatInlineNode(n Node) string {
	if n.IsLeaf {
		return n.Leaf
	}
	return "(" + formatInline(n.Expr) + ")"
}
