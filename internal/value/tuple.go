package value

// Tuple is a heterogeneous small product (spec.md §3): a Tag plus a small
// slice of extra values, optionally carrying a class for method dispatch
// and a sum-type prototype for enum-tuple discrimination.
//
// spec.md §9 Design Notes flags enum-tuple sum-type handling as an open
// question in the source (an explicit TODO there); this repo's decision:
// SumType is declarative metadata carried on the Tuple, consulted only by
// `internal/builtins/meta.go`'s `type-of`/tuple introspection procs, never
// enforced by the evaluator. See DESIGN.md "Open Questions".
type Tuple struct {
	Tag     Tag
	Extra   []Value
	Class   *ClassImpl
	SumType *SumTypePrototype
}

func (Tuple) Kind() Kind { return KindTuple }

// SumTypePrototype names the sibling tags of an enum-tuple family, so
// `type-of` and pattern-style helpers can report which case a Tuple belongs
// to without the evaluator enforcing exhaustiveness.
type SumTypePrototype struct {
	Name  Tag
	Cases []Tag
}

func (t Tuple) FindMethod(name Tag) (Value, bool) {
	if t.Class == nil {
		return nil, false
	}
	return t.Class.Methods.Get(name)
}
