package edn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hflisp/calcit/internal/cirru"
)

// Parse reads EDN source text (Cirru-syntax, per the package doc comment)
// into a single top-level Value. The snapshot file holds exactly one such
// top-level form.
func Parse(src string) (Value, error) {
	nodes, err := cirru.Parse(src)
	if err != nil {
		return Value{}, err
	}
	if len(nodes) == 0 {
		return Nil(), nil
	}
	return NodeToValue(nodes[0])
}

// NodeToValue converts one Cirru node into an EDN Value, recognizing EDN's
// reserved head tokens: `{}` (map), `[]` (vector), `#{}` (set), `%{}`
// (record, second child names the tag), `'` (quote).
func NodeToValue(n cirru.Node) (Value, error) {
	if n.IsLeaf {
		return leafToValue(n.Leaf)
	}
	if len(n.Expr) == 0 {
		return Value{Kind: KindVector}, nil
	}
	head := n.Expr[0]
	if head.IsLeaf {
		switch head.Leaf {
		case "{}":
			return parseMap(n.Expr[1:])
		case "[]":
			return parseVector(n.Expr[1:])
		case "#{}":
			return parseSet(n.Expr[1:])
		case "%{}":
			return parseRecord(n.Expr[1:])
		case "'":
			if len(n.Expr) != 2 {
				return Value{}, fmt.Errorf("edn: quote expects 1 argument")
			}
			return Value{Kind: KindQuote, Quote: n.Expr[1]}, nil
		case "do", "::":
			return parseVector(n.Expr[1:])
		}
	}
	return parseVector(n.Expr)
}

func parseVector(children []cirru.Node) (Value, error) {
	items := make([]Value, 0, len(children))
	for _, c := range children {
		v, err := NodeToValue(c)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return Value{Kind: KindVector, Items: items}, nil
}

func parseSet(children []cirru.Node) (Value, error) {
	v, err := parseVector(children)
	if err != nil {
		return Value{}, err
	}
	v.Kind = KindSet
	return v, nil
}

func parseMap(children []cirru.Node) (Value, error) {
	m := Value{Kind: KindMap}
	for _, pair := range children {
		if pair.IsLeaf || len(pair.Expr) < 2 {
			return Value{}, fmt.Errorf("edn: map entry must be (key value), got %v", pair)
		}
		k, err := NodeToValue(pair.Expr[0])
		if err != nil {
			return Value{}, err
		}
		val, err := NodeToValue(joinRemainder(pair.Expr[1:]))
		if err != nil {
			return Value{}, err
		}
		m.Keys = append(m.Keys, k)
		m.Vals = append(m.Vals, val)
	}
	return m, nil
}

func parseRecord(children []cirru.Node) (Value, error) {
	if len(children) < 1 {
		return Value{}, fmt.Errorf("edn: record needs a tag name")
	}
	if !children[0].IsLeaf {
		return Value{}, fmt.Errorf("edn: record tag must be a leaf")
	}
	tag := strings.TrimPrefix(children[0].Leaf, ":")
	rec := Value{Kind: KindRecord, Tag: tag}
	for _, pair := range children[1:] {
		if pair.IsLeaf || len(pair.Expr) < 2 {
			return Value{}, fmt.Errorf("edn: record field must be (key value), got %v", pair)
		}
		if !pair.Expr[0].IsLeaf {
			return Value{}, fmt.Errorf("edn: record field name must be a leaf")
		}
		val, err := NodeToValue(joinRemainder(pair.Expr[1:]))
		if err != nil {
			return Value{}, err
		}
		rec.Fields = append(rec.Fields, strings.TrimPrefix(pair.Expr[0].Leaf, ":"))
		rec.Vals = append(rec.Vals, val)
	}
	return rec, nil
}

// joinRemainder re-wraps a field/entry's remaining children as a single
// node to convert, so a value spanning multiple nested lines (folded via
// Cirru's indentation rule) still converts as one EDN value.
func joinRemainder(rest []cirru.Node) cirru.Node {
	if len(rest) == 1 {
		return rest[0]
	}
	return cirru.Node{Expr: rest}
}

func leafToValue(s string) (Value, error) {
	switch s {
	case "nil":
		return Nil(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "":
		return Value{}, fmt.Errorf("edn: empty leaf is invalid")
	}
	switch s[0] {
	case ':':
		return TagV(strings.TrimPrefix(s, ":")), nil
	case '"', '|':
		return Str(s[1:]), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f), nil
	}
	return SymbolV(s), nil
}
