// Package value implements the tagged-sum value universe described in
// spec.md §3: every runtime value, unevaluated form, and resolved reference
// that flows through the reader, preprocessor, and evaluator is one
// concrete type satisfying Value.
package value

// Kind identifies which variant of the value universe a Value carries.
// Dispatch on Kind (rather than a Go type switch) is used in the hot paths
// of the evaluator, mirroring spec.md §3's choice of an enum tag for Proc
// and Syntax so dispatch doesn't pay for string comparison.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindStr
	KindTag
	KindSymbol
	KindLocalRef
	KindDefRef
	KindProcRef
	KindSyntaxRef
	KindRegisteredRef
	KindRawRef
	KindList
	KindSet
	KindMap
	KindRecord
	KindTuple
	KindThunk
	KindRef
	KindFn
	KindMacro
	KindRecur
	KindCirruQuote
	KindBuffer
	KindRawCode
	KindMethod
	KindAnyRef
)

// Value is satisfied by every variant of the value universe.
type Value interface {
	Kind() Kind
}

// Nil is the unit value.
type Nil struct{}

func (Nil) Kind() Kind { return KindNil }

// Bool wraps a boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

// Number is the language's only numeric type: a 64-bit float (spec.md §3).
type Number float64

func (Number) Kind() Kind { return KindNumber }

// Str is an immutable string.
type Str string

func (Str) Kind() Kind { return KindStr }

// Buffer is raw binary data.
type Buffer []byte

func (Buffer) Kind() Kind { return KindBuffer }

// CirruQuote holds an opaque quoted Cirru AST node, produced by the
// `cirru-quote` reader form (spec.md §4.3) and otherwise inert to the
// evaluator.
type CirruQuote struct {
	AST interface{} // a cirru.Node, kept untyped here to avoid an import cycle
}

func (CirruQuote) Kind() Kind { return KindCirruQuote }

// RawCode is literal target-language code, produced by `js/...` symbol
// resolution (spec.md §4.4 step 5) for consumption by an external code
// generator. The evaluator never executes it.
type RawCode struct {
	Kind string // e.g. "js"
	Text string
}

func (RawCode) Kind() Kind { return KindRawCode }

// AnyRef is an opaque foreign handle. Per spec.md §9 Design Notes its
// hashing/ordering contract is intentionally left unspecified: Equal and
// Compare on AnyRef panic, and callers must keep AnyRef out of positions
// that need ordering or hashing (set/map keys, sort).
type AnyRef struct {
	Tag string
	Ptr interface{}
}

func (AnyRef) Kind() Kind { return KindAnyRef }
