package builtins

import "github.com/hflisp/calcit/internal/value"

type SyntaxID = value.SyntaxID

const (
	SyntaxIf SyntaxID = iota
	SyntaxLet
	SyntaxQuote
	SyntaxQuasiquote
	SyntaxUnquote
	SyntaxUnquoteSplice
	SyntaxEval
	SyntaxDefn
	SyntaxDefmacro
	SyntaxTry
	SyntaxRecur
	SyntaxDefatom
	SyntaxResetBang
	SyntaxHintFn
	SyntaxMacroexpand
	SyntaxMacroexpand1
	SyntaxMacroexpandAll
	SyntaxArgSpread
	SyntaxArgOptional
	SyntaxDo

	syntaxIDCount
)

var syntaxNames = map[SyntaxID]string{
	SyntaxIf: "if", SyntaxLet: "&let", SyntaxQuote: "quote",
	SyntaxQuasiquote: "quasiquote", SyntaxUnquote: "~", SyntaxUnquoteSplice: "~@",
	SyntaxEval: "eval", SyntaxDefn: "defn", SyntaxDefmacro: "defmacro",
	SyntaxTry: "try", SyntaxRecur: "recur", SyntaxDefatom: "defatom",
	SyntaxResetBang: "reset!", SyntaxHintFn: "hint-fn",
	SyntaxMacroexpand: "macroexpand", SyntaxMacroexpand1: "macroexpand-1",
	SyntaxMacroexpandAll: "macroexpand-all", SyntaxArgSpread: "&", SyntaxArgOptional: "?",
	SyntaxDo: "do",
}

// RegisterSyntaxNames installs every syntax form's name into value's
// lookup table, mirroring RegisterProcNames.
func RegisterSyntaxNames() {
	for id, name := range syntaxNames {
		value.RegisterSyntaxName(name, id)
	}
}

func SyntaxNameOf(id SyntaxID) string { return syntaxNames[id] }

// Init registers both proc and syntax names; cmd/cr calls this once at
// startup before any snapshot is parsed.
func Init() {
	RegisterProcNames()
	RegisterSyntaxNames()
}
