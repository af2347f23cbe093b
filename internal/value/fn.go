package value

import "sync/atomic"

var fnIdentitySeq uint64

func nextFnIdentity() uint64 {
	return atomic.AddUint64(&fnIdentitySeq, 1)
}

// Arity describes one `fn`/`defn` clause's parameter shape (spec.md §4.2):
// a fixed prefix of local slots, an optional `&` rest-binding slot, and an
// optional `?` optional-arg boundary index into Params.
type Arity struct {
	Params    []LocalIdx
	RestParam LocalIdx
	HasRest   bool
	OptionalAt int // index into Params where `?` optional args begin, -1 if none
	Body      Value // List of body forms, evaluated with an implicit `do`
}

// Fn is a closure: one or more arities, a captured lexical Scope, and an
// identity id used for equality/hashing (spec.md §3: "Functions/macros
// compare by a generated identity... each instantiation gets a unique id").
type Fn struct {
	Name     string
	Ns       string
	Arities  []Arity
	Scope    *Scope
	Identity uint64
}

func (*Fn) Kind() Kind { return KindFn }

func NewFn(name, ns string, arities []Arity, scope *Scope) *Fn {
	return &Fn{Name: name, Ns: ns, Arities: arities, Scope: scope, Identity: nextFnIdentity()}
}

// Macro is syntactically identical to Fn but is invoked at preprocess time
// against unevaluated argument forms (spec.md §4.2, §6).
type Macro struct {
	Name     string
	Ns       string
	Arities  []Arity
	Scope    *Scope
	Identity uint64
}

func (*Macro) Kind() Kind { return KindMacro }

func NewMacro(name, ns string, arities []Arity, scope *Scope) *Macro {
	return &Macro{Name: name, Ns: ns, Arities: arities, Scope: scope, Identity: nextFnIdentity()}
}

// Scope is a persistent lexical environment: a linked list of bindings,
// looked up right-to-left, i.e. newest binding shadows first (spec.md §3:
// "Lexical scope is a persistent linked list of {LocalIdx, Value} pairs;
// lookup scans from the most recent binding backward").
type Scope struct {
	Parent *Scope
	Idx    LocalIdx
	Val    Value
}

// Push returns a new Scope with one more binding in front.
func (s *Scope) Push(idx LocalIdx, val Value) *Scope {
	return &Scope{Parent: s, Idx: idx, Val: val}
}

// Lookup scans from the most recently pushed binding backward.
func (s *Scope) Lookup(idx LocalIdx) (Value, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Idx == idx {
			return cur.Val, true
		}
	}
	return nil, false
}
