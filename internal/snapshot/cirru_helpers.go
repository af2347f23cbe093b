package snapshot

import (
	"fmt"

	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/edn"
)

// ednCodeToNode extracts the raw Cirru AST from a CodeEntry's `:code`
// field. The snapshot format embeds Cirru code inside an EDN document via
// EDN's own quote notation (`'(...)`, read as edn.KindQuote) so that nested
// Cirru isn't re-interpreted as EDN map/vector/set syntax.
func ednCodeToNode(v edn.Value) (cirru.Node, error) {
	if v.Kind == edn.KindQuote {
		if node, ok := v.Quote.(cirru.Node); ok {
			return node, nil
		}
		return cirru.Node{}, fmt.Errorf("code entry quote did not hold a Cirru node")
	}
	// Tolerate code stored without the quote wrapper (a bare nested list):
	// fall back to treating the EDN value itself as the Cirru shape.
	return ednValueAsNode(v), nil
}

func ednValueAsNode(v edn.Value) cirru.Node {
	switch v.Kind {
	case edn.KindVector, edn.KindList, edn.KindSet:
		children := make([]cirru.Node, len(v.Items))
		for i, it := range v.Items {
			children[i] = ednValueAsNode(it)
		}
		return cirru.Node{Expr: children}
	case edn.KindSymbol:
		return cirru.NewLeaf(v.Symbol)
	case edn.KindTag:
		return cirru.NewLeaf(":" + v.Tag)
	case edn.KindStr:
		return cirru.NewLeaf("|" + v.Str)
	case edn.KindNil:
		return cirru.NewLeaf("nil")
	case edn.KindBool:
		if v.Bool {
			return cirru.NewLeaf("true")
		}
		return cirru.NewLeaf("false")
	default:
		return cirru.NewLeaf("nil")
	}
}

func nsFormNode(ns string) cirru.Node {
	return cirru.NewExpr(cirru.NewLeaf("ns"), cirru.NewLeaf(ns))
}

func strLeafNode(s string) cirru.Node {
	return cirru.NewLeaf("|" + s)
}
