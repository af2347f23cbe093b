// Package edn implements a reader for EDN, the data notation used to encode
// the Calcit snapshot file (spec.md glossary: "a data notation used for the
// snapshot file; superset of Cirru with tagged records, maps, sets"). Like
// Cirru source, an EDN document is written using Cirru's own indentation
// syntax (internal/cirru.Parse produces the tree this package interprets);
// EDN adds a handful of reserved head tokens (`{}`, `[]`, `#{}`, `%{}`) that
// Cirru itself has no opinion about.
//
// Grounded on original_source/src/data/edn.rs's edn_to_calcit/calcit_to_edn
// (the `cirru_edn::Edn` type there is external and not vendored; this
// package is a from-scratch reader for its on-disk notation).
package edn

import "github.com/hflisp/calcit/internal/value"

// Kind identifies an EDN value's shape.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindStr
	KindTag
	KindSymbol
	KindQuote
	KindList
	KindVector
	KindSet
	KindMap
	KindRecord
	KindBuffer
)

// Value is the EDN tagged sum. Unlike package value's Value, EDN documents
// have no thunks, refs, fns, or resolved-symbol variants — only data.
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Str     string
	Tag     string
	Symbol  string
	Quote   interface{} // a cirru.Node, as the reader stores it
	Items   []Value     // List, Vector, Set
	Keys    []Value     // Map keys, parallel to Vals
	Vals    []Value     // Map values, and Record field values
	Fields  []string    // Record field names, parallel to Vals
	Buffer  []byte
}

func Nil() Value                { return Value{Kind: KindNil} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Number(n float64) Value    { return Value{Kind: KindNumber, Number: n} }
func Str(s string) Value        { return Value{Kind: KindStr, Str: s} }
func TagV(t string) Value       { return Value{Kind: KindTag, Tag: t} }
func SymbolV(s string) Value    { return Value{Kind: KindSymbol, Symbol: s} }

// Get reads a map-kind Value's entry by tag/keyword key, as the snapshot
// loader uses throughout (`:package`, `:configs`, `:files`, …).
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap && v.Kind != KindRecord {
		return Value{}, false
	}
	if v.Kind == KindRecord {
		for i, f := range v.Fields {
			if f == key {
				return v.Vals[i], true
			}
		}
		return Value{}, false
	}
	for i, k := range v.Keys {
		if (k.Kind == KindTag && k.Tag == key) || (k.Kind == KindStr && k.Str == key) {
			return v.Vals[i], true
		}
	}
	return Value{}, false
}

// ToValue converts an EDN document into the Calcit value universe, per
// original_source's edn_to_calcit. Records are stamped with a StructRef
// built from their own sorted field names (there is no "options" class
// lookup table at snapshot-load time the way the original threads one
// through from an interning value.NewMap()/… prior, since class dispatch
// only matters once a record participates in `.method` calls, long after
// loading).
func (v Value) ToValue() value.Value {
	switch v.Kind {
	case KindNil:
		return value.Nil{}
	case KindBool:
		return value.Bool(v.Bool)
	case KindNumber:
		return value.Number(v.Number)
	case KindStr:
		return value.Str(v.Str)
	case KindTag:
		return value.NewTag(v.Tag)
	case KindSymbol:
		return value.Symbol{Name: v.Symbol}
	case KindQuote:
		return value.CirruQuote{AST: v.Quote}
	case KindList:
		items := make([]value.Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.ToValue()
		}
		return value.NewList(items...)
	case KindVector:
		items := make([]value.Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.ToValue()
		}
		return value.NewList(items...)
	case KindSet:
		items := make([]value.Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.ToValue()
		}
		return value.SetFromItems(items...)
	case KindMap:
		m := value.NewMap()
		for i, k := range v.Keys {
			m = m.Assoc(k.ToValue(), v.Vals[i].ToValue())
		}
		return m
	case KindRecord:
		tags := make([]value.Tag, len(v.Fields))
		vals := make([]value.Value, len(v.Vals))
		for i, f := range v.Fields {
			tags[i] = value.NewTag(f)
			vals[i] = v.Vals[i].ToValue()
		}
		sr := value.NewStructRef(value.NewTag(v.Tag), tags)
		ordered := make([]value.Value, len(sr.Fields))
		for i, f := range sr.Fields {
			for j, orig := range tags {
				if orig.ID() == f.ID() {
					ordered[i] = vals[j]
				}
			}
		}
		return value.Record{Struct: sr, Values: ordered}
	case KindBuffer:
		return value.Buffer(v.Buffer)
	default:
		return value.Nil{}
	}
}
