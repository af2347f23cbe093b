package value

// Equal implements spec.md §3's equality rule: structural for every
// persistent value, identity-based for Fn/Macro (compared by the unique id
// each instantiation receives), set/map semantics for Set/Map respectively.
// Thunk, Ref, and AnyRef never participate in equality or hashing (spec.md
// §9 Design Notes) — comparing them panics so a misuse surfaces immediately
// rather than silently producing a meaningless answer.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Nil:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case Str:
		return av == b.(Str)
	case Tag:
		return av.ID() == b.(Tag).ID()
	case Buffer:
		bv := b.(Buffer)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case List:
		bv := b.(List)
		if av.Count() != bv.Count() {
			return false
		}
		equal := true
		av.Each(func(i int, v Value) {
			other, ok := bv.Get(i)
			if !ok || !Equal(v, other) {
				equal = false
			}
		})
		return equal
	case Set:
		bv := b.(Set)
		if av.Count() != bv.Count() {
			return false
		}
		equal := true
		av.Each(func(v Value) {
			if !bv.Contains(v) {
				equal = false
			}
		})
		return equal
	case Map:
		bv := b.(Map)
		if av.Count() != bv.Count() {
			return false
		}
		equal := true
		av.Each(func(k, v Value) {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				equal = false
			}
		})
		return equal
	case Tuple:
		bv := b.(Tuple)
		if av.Tag.ID() != bv.Tag.ID() || len(av.Extra) != len(bv.Extra) {
			return false
		}
		for i := range av.Extra {
			if !Equal(av.Extra[i], bv.Extra[i]) {
				return false
			}
		}
		return true
	case Record:
		bv := b.(Record)
		if av.Struct.Name.ID() != bv.Struct.Name.ID() || len(av.Values) != len(bv.Values) {
			return false
		}
		for i := range av.Values {
			if !Equal(av.Values[i], bv.Values[i]) {
				return false
			}
		}
		return true
	case Symbol:
		bv := b.(Symbol)
		return av.Name == bv.Name && av.OriginNs == bv.OriginNs
	case LocalRef:
		return av.Idx == b.(LocalRef).Idx
	case DefRef:
		bv := b.(DefRef)
		return av.Ns == bv.Ns && av.Def == bv.Def
	case ProcRef:
		return av.ID == b.(ProcRef).ID
	case SyntaxRef:
		return av.ID == b.(SyntaxRef).ID
	case RegisteredRef:
		return av.Alias == b.(RegisteredRef).Alias
	case RawRef:
		return av.Text == b.(RawRef).Text
	case *Fn:
		return av.Identity == b.(*Fn).Identity
	case *Macro:
		return av.Identity == b.(*Macro).Identity
	case Recur:
		return false
	case CirruQuote:
		panic("value: CirruQuote does not support equality")
	case RawCode:
		bv := b.(RawCode)
		return av.Kind == bv.Kind && av.Text == bv.Text
	case Method:
		bv := b.(Method)
		return av.Name == bv.Name && av.MethodKind == bv.MethodKind
	case *Thunk:
		panic("value: Thunk does not support equality")
	case *Ref:
		panic("value: Ref does not support equality, compare by identity via ==")
	case AnyRef:
		panic("value: AnyRef equality is host-defined; unwrap before comparing")
	default:
		panic("value: Equal: unhandled kind")
	}
}
