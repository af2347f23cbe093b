package value

import (
	"sort"

	"github.com/mpvl/unique"
)

// StructRef names a record shape: a tag plus its sorted, deduped field
// names (spec.md §3: "struct-ref = { name:Tag, fields:[Tag] sorted }").
type StructRef struct {
	Name   Tag
	Fields []Tag
}

type fieldSlice []Tag

func (f fieldSlice) Len() int           { return len(f) }
func (f fieldSlice) Less(i, j int) bool { return f[i].Name() < f[j].Name() }
func (f fieldSlice) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

// NewStructRef sorts and dedupes the field list with mpvl/unique (from the
// cue-lang-cue example), matching its own use for deduping sorted slices
// of names after a structural merge.
func NewStructRef(name Tag, fields []Tag) StructRef {
	cp := make(fieldSlice, len(fields))
	copy(cp, fields)
	sort.Sort(cp)
	n := unique.Sort(cp)
	return StructRef{Name: name, Fields: []Tag(cp[:n])}
}

func (sr StructRef) IndexOf(field Tag) (int, bool) {
	for i, f := range sr.Fields {
		if f.ID() == field.ID() {
			return i, true
		}
	}
	return 0, false
}

// ClassImpl is a trait-implementation record bound onto a Record or Tuple,
// providing the method lookup used by `.method` dispatch (spec.md §4.6).
type ClassImpl struct {
	Name    Tag
	Methods Map // Tag -> Fn | Proc
}

// Record is a heterogeneous product keyed by a shared StructRef (spec.md
// §3). Values is aligned index-for-index with Struct.Fields.
type Record struct {
	Struct  StructRef
	Values  []Value
	Classes []ClassImpl
}

func (Record) Kind() Kind { return KindRecord }

func (r Record) Get(field Tag) (Value, bool) {
	idx, ok := r.Struct.IndexOf(field)
	if !ok {
		return nil, false
	}
	return r.Values[idx], true
}

func (r Record) Assoc(field Tag, v Value) (Record, bool) {
	idx, ok := r.Struct.IndexOf(field)
	if !ok {
		return r, false
	}
	values := make([]Value, len(r.Values))
	copy(values, r.Values)
	values[idx] = v
	return Record{Struct: r.Struct, Values: values, Classes: r.Classes}, true
}

func (r Record) FindMethod(name Tag) (Value, bool) {
	for _, c := range r.Classes {
		if v, ok := c.Methods.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}
