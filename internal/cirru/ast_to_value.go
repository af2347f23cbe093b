package cirru

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hflisp/calcit/internal/value"
)

// CodeToValue walks a Cirru AST (one def's root expression) and converts it
// into the Calcit value tree, stamping a source coordinate — the path of
// child indices from the def root — onto every Symbol (spec.md §4.3).
// Grounded on original_source/src/data/cirru.rs's `code_to_calcit`.
func CodeToValue(n Node, ns, def string, coord []int) (value.Value, error) {
	if n.IsLeaf {
		return leafToValue(n.Leaf, ns, def, coord)
	}
	if len(n.Expr) == 0 {
		return value.NewList(), nil
	}
	if head := n.Expr[0]; head.IsLeaf {
		if head.Leaf == ";" {
			return value.Nil{}, errSkip
		}
		if head.Leaf == "cirru-quote" {
			if len(n.Expr) != 2 {
				return nil, fmt.Errorf("cirru-quote expects exactly 1 argument, got %d", len(n.Expr)-1)
			}
			return value.CirruQuote{AST: n.Expr[1]}, nil
		}
		if obj, method, ok := splitMethodLeaf(head.Leaf); ok {
			items := []value.Value{method, value.Symbol{Name: obj, OriginNs: ns, OriginDef: def, Coord: append(append([]int{}, coord...), 0)}}
			for i := 1; i < len(n.Expr); i++ {
				v, err := CodeToValue(n.Expr[i], ns, def, childCoord(coord, i))
				if err != nil {
					if err == errSkip {
						continue
					}
					return nil, err
				}
				items = append(items, v)
			}
			return value.NewList(items...), nil
		}
	}
	items := make([]value.Value, 0, len(n.Expr))
	for i, c := range n.Expr {
		if i > 255 {
			return nil, fmt.Errorf("cirru code too large at index %d", i)
		}
		v, err := CodeToValue(c, ns, def, childCoord(coord, i))
		if err != nil {
			if err == errSkip {
				continue
			}
			return nil, err
		}
		items = append(items, v)
	}
	return value.NewList(items...), nil
}

var errSkip = fmt.Errorf("cirru: comment form skipped")

func childCoord(coord []int, i int) []int {
	out := make([]int, len(coord)+1)
	copy(out, coord)
	out[len(coord)] = i
	return out
}

func leafToValue(s, ns, def string, coord []int) (value.Value, error) {
	switch s {
	case "nil":
		return value.Nil{}, nil
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "&E":
		return value.Number(math.E), nil
	case "&PI":
		return value.Number(math.Pi), nil
	case "&newline":
		return value.Str("\n"), nil
	case "&tab":
		return value.Str("\t"), nil
	case "&calcit-version":
		return value.Str("0.1.0"), nil
	case "&":
		if sr, ok := value.LookupSyntaxName("&", ns); ok {
			return sr, nil
		}
		return value.RawRef{Text: "&"}, nil
	case "?":
		if sr, ok := value.LookupSyntaxName("?", ns); ok {
			return sr, nil
		}
		return value.RawRef{Text: "?"}, nil
	case "~":
		return value.RawRef{Text: "~"}, nil
	case "~@":
		return value.RawRef{Text: "~@"}, nil
	case "":
		return nil, fmt.Errorf("cirru: empty leaf is invalid")
	}

	switch s[0] {
	case ':':
		if len(s) > 1 && !strings.HasPrefix(s, "::") {
			return value.NewTag(s[1:]), nil
		}
		if s == "::" {
			if p, ok := value.LookupProcName("::"); ok {
				return p, nil
			}
		}
	case '.':
		switch {
		case strings.HasPrefix(s, ".?-"):
			return value.Method{Name: s[3:], MethodKind: value.MethodAccessOptional}, nil
		case strings.HasPrefix(s, ".?!"):
			return value.Method{Name: s[3:], MethodKind: value.MethodInvokeNativeOptional}, nil
		case strings.HasPrefix(s, ".-"):
			return value.Method{Name: s[2:], MethodKind: value.MethodAccess}, nil
		case strings.HasPrefix(s, ".!"):
			return value.Method{Name: s[2:], MethodKind: value.MethodInvokeNative}, nil
		default:
			return value.Method{Name: s[1:], MethodKind: value.MethodInvoke}, nil
		}
	case '"', '|':
		return value.Str(s[1:]), nil
	}

	if strings.HasPrefix(s, "0x") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return nil, fmt.Errorf("cirru: bad hex literal %q: %w", s, err)
		}
		return value.Number(float64(n)), nil
	}

	if strings.HasPrefix(s, "'") && len(s) > 1 {
		quoteSyntax, _ := value.LookupSyntaxName("quote", ns)
		return value.NewList(
			quoteSyntax,
			value.Symbol{Name: s[1:], OriginNs: ns, OriginDef: def, Coord: coord},
		), nil
	}
	if strings.HasPrefix(s, "~@") && len(s) > 2 {
		sp, _ := value.LookupSyntaxName("~@", ns)
		return value.NewList(sp, value.Symbol{Name: s[2:], OriginNs: ns, OriginDef: def, Coord: coord}), nil
	}
	if strings.HasPrefix(s, "~") && len(s) > 1 {
		sp, _ := value.LookupSyntaxName("~", ns)
		return value.NewList(sp, value.Symbol{Name: s[1:], OriginNs: ns, OriginDef: def, Coord: coord}), nil
	}
	if strings.HasPrefix(s, "@") {
		return value.NewList(
			value.Symbol{Name: "deref", OriginNs: ns, OriginDef: def, Coord: coord},
			value.Symbol{Name: s[1:], OriginNs: ns, OriginDef: def, Coord: coord},
		), nil
	}

	if p, ok := value.LookupProcName(s); ok {
		return p, nil
	}
	if sx, ok := value.LookupSyntaxName(s, ns); ok {
		return sx, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Number(f), nil
	}
	return value.Symbol{Name: s, OriginNs: ns, OriginDef: def, Coord: coord}, nil
}

// splitMethodLeaf rewrites a call-head leaf like `obj.method`, `obj.-field`,
// `obj.!method`, `obj.?-field`, `obj.?!method` into its two-token method
// call form (spec.md §4.3: "the head is rewritten into the two-token
// method-call form, method first, object second").
func splitMethodLeaf(s string) (obj string, method value.Method, ok bool) {
	type pat struct {
		sep  string
		kind value.MethodKind
	}
	pats := []pat{
		{".?-", value.MethodAccessOptional},
		{".?!", value.MethodInvokeNativeOptional},
		{".-", value.MethodAccess},
		{".!", value.MethodInvokeNative},
	}
	for _, p := range pats {
		if idx := strings.Index(s, p.sep); idx > 0 {
			objPart, rest := s[:idx], s[idx+len(p.sep):]
			if isValidSymbol(objPart) && isValidSymbol(rest) {
				return objPart, value.Method{Name: rest, MethodKind: p.kind}, true
			}
		}
	}
	if idx := strings.Index(s, "."); idx > 0 {
		objPart, rest := s[:idx], s[idx+1:]
		if isValidSymbol(objPart) && isValidSymbol(rest) && rest != "" {
			return objPart, value.Method{Name: rest, MethodKind: value.MethodInvoke}, true
		}
	}
	return "", value.Method{}, false
}

func isValidSymbol(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == ' ' || r == '(' || r == ')' {
			return false
		}
	}
	return true
}
