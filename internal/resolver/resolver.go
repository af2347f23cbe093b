// Package resolver implements the L5 symbol resolver (spec.md §4.4): given
// (current-ns, current-def, name) and a lexical scope, produce one of the
// resolved reference variants package value defines (LocalRef, DefRef,
// ProcRef, SyntaxRef, RegisteredRef, RawRef) or report the name unresolved.
package resolver

import (
	"fmt"
	"strings"

	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
)

const CoreNs = "calcit.core"

// Scope is the minimal lexical-lookup surface the resolver needs; package
// eval's *value.Scope satisfies it.
type Scope interface {
	Lookup(idx value.LocalIdx) (value.Value, bool)
}

// LocalNames is consulted by step 2 (local in scope) without needing a full
// Scope instance walk — preprocessing tracks which names are locally bound
// at each point in the tree independently of the runtime Scope chain.
type LocalNames map[string]value.LocalIdx

// Warning is a non-fatal resolution finding (spec.md §7 "Warnings").
type Warning struct {
	Ns, Def string
	Message string
}

// Resolve implements spec.md §4.4's numbered resolution steps.
func Resolve(prog *program.Program, ns, def, name string, locals LocalNames) (value.Value, []Warning) {
	switch name {
	case "~", "~@", "&", "?":
		return value.RawRef{Text: name}, nil
	}

	if idx, ok := locals[name]; ok {
		return value.LocalRef{Name: name, Idx: idx}, nil
	}

	if sx, ok := value.LookupSyntaxName(name, ns); ok {
		return sx, nil
	}

	if p, ok := value.LookupProcName(name); ok {
		return p, nil
	}

	if nsAlias, rest, ok := splitNsSlash(name); ok {
		if nsAlias == "js" {
			return value.RawCode{Kind: "js", Text: rest}, nil
		}
		if rule, ok := prog.ImportRuleFor(ns, nsAlias); ok && rule.Kind == program.ImportNsAs {
			if prog.HasDef(rule.TargetNs, rest) {
				return value.DefRef{Ns: rule.TargetNs, Def: rest}, nil
			}
			return nil, []Warning{{ns, def, fmt.Sprintf("unknown def %s/%s via alias %s", rule.TargetNs, rest, nsAlias)}}
		}
		if prog.HasDef(nsAlias, rest) {
			return value.DefRef{Ns: nsAlias, Def: rest}, nil
		}
		if _, ok := prog.LookupRegistered(name); ok {
			return value.RegisteredRef{Alias: name}, nil
		}
		return nil, []Warning{{ns, def, fmt.Sprintf("unknown namespace target: %s", nsAlias)}}
	}

	if prog.HasDef(CoreNs, name) {
		return value.DefRef{Ns: CoreNs, Def: name}, nil
	}

	if prog.HasDef(ns, name) {
		return value.DefRef{Ns: ns, Def: name}, nil
	}

	if _, ok := prog.LookupRegistered(name); ok {
		return value.RegisteredRef{Alias: name}, nil
	}

	if rule, ok := prog.ImportRuleFor(ns, name); ok {
		switch rule.Kind {
		case program.ImportNsReferDef:
			target := rule.TargetDef
			if target == "" {
				target = name
			}
			return value.DefRef{Ns: rule.TargetNs, Def: target}, nil
		case program.ImportNsDefault:
			return value.DefRef{Ns: rule.TargetNs, Def: name}, nil
		}
	}

	if looksLikeJsBuiltinOrMethod(name) {
		return value.RawRef{Text: name}, nil
	}

	return value.Symbol{Name: name, OriginNs: ns, OriginDef: def}, []Warning{
		{ns, def, fmt.Sprintf("unknown name %q in %s/%s", name, ns, def)},
	}
}

func splitNsSlash(name string) (nsAlias, rest string, ok bool) {
	idx := strings.Index(name, "/")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", false
	}
	return name[:idx], name[idx+1:], true
}

func looksLikeJsBuiltinOrMethod(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "js/")
}
