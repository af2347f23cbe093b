package value

// Symbol is a parsed, not-yet-resolved identifier: "origin-ns, origin-def,
// plus where-it-came-from" (spec.md §3). Coord is the path of child
// indices from the containing def's root expression to this symbol,
// used for error locations and editor tooling (spec.md glossary "Coord").
//
// spec.md §9 Design Notes asks for the source's "symbol carrying an
// optional resolution field" to be re-architected as a tagged variant: a
// parsed Symbol is this type, and a resolved reference is one of the
// distinct types below (LocalRef, DefRef, ProcRef, SyntaxRef,
// RegisteredRef, RawRef). The preprocessor replaces a Symbol node with one
// of those; the evaluator dispatches directly on Go type/Kind rather than
// checking an Option field at runtime.
type Symbol struct {
	Name      string
	OriginNs  string
	OriginDef string
	Coord     []int
}

func (Symbol) Kind() Kind { return KindSymbol }

// LocalRef is a symbol resolved to a lexically bound local.
type LocalRef struct {
	Name  string
	Idx   LocalIdx
	Coord []int
}

func (LocalRef) Kind() Kind { return KindLocalRef }

// DefRef is a symbol resolved to a specific namespace/def pair — the
// "Import" variant of spec.md §3, renamed for clarity since it also covers
// same-namespace and calcit.core resolution, not just cross-ns imports.
type DefRef struct {
	Ns    string
	Def   string
	Coord []int
}

func (DefRef) Kind() Kind { return KindDefRef }

// ProcRef is a symbol resolved to one of the ~300 builtin operations,
// identified by enum for dispatch speed (spec.md §3). The concrete ProcID
// space is owned by package builtins; value only needs the integer type to
// avoid an import cycle (builtins depends on value, not vice versa).
type ProcID uint16

type ProcRef struct {
	ID   ProcID
	Name string
}

func (ProcRef) Kind() Kind { return KindProcRef }

// SyntaxID identifies one of the core special forms; see package builtins.
type SyntaxID uint16

type SyntaxRef struct {
	ID       SyntaxID
	Name     string
	OriginNs string
}

func (SyntaxRef) Kind() Kind { return KindSyntaxRef }

// RegisteredRef is a symbol resolved to a proc injected at runtime by an
// embedder (spec.md §3 "Registered(alias)").
type RegisteredRef struct {
	Alias string
}

func (RegisteredRef) Kind() Kind { return KindRegisteredRef }

// RawRef is the "ResolvedRaw" catch-all of spec.md §4.4: syntactic markers
// (`~`, `~@`, `&`, `?`), runtime-registered-proc names resolved only by
// name (no live binding yet), and JS-builtin-shaped names passed through
// unresolved for codegen.
type RawRef struct {
	Text string
}

func (RawRef) Kind() Kind { return KindRawRef }

// MethodKind distinguishes the five dotted-call forms of spec.md §4.3.
type MethodKind uint8

const (
	MethodInvoke MethodKind = iota
	MethodInvokeNative
	MethodInvokeNativeOptional
	MethodAccess
	MethodAccessOptional
)

// Method is produced by rewriting a `.name`/`.-name`/... leaf (spec.md
// §4.3) and is expanded during preprocessing into a call against a
// class-record (spec.md §4.6).
type Method struct {
	Name       string
	MethodKind MethodKind
}

func (Method) Kind() Kind { return KindMethod }
