package eval

import (
	"fmt"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/resolver"
	"github.com/hflisp/calcit/internal/value"
)

// PreprocessNsDef implements spec.md §4.5 step 1-4: parse (ns, def)'s raw
// Cirru code into the value tree, guard against circular self-reference
// with an InProgress placeholder, preprocess the expression, and write the
// result back to the evaluated table — either an eagerly-built Fn/Macro, or
// a fresh Code thunk wrapping the resolved-but-unevaluated expression.
func (ev *Evaluator) PreprocessNsDef(ns, def string) (value.Value, []resolver.Warning, error) {
	raw, ok := ev.Prog.RawDef(ns, def)
	if !ok {
		return nil, nil, NewError("no such def %s/%s", ns, def)
	}
	if existing, ok := ev.Prog.Evaled(ns, def); ok {
		if th, isThunk := existing.(*value.Thunk); !isThunk || th.State != value.ThunkStateInProgress {
			return existing, nil, nil
		}
	}
	code, err := cirru.CodeToValue(raw, ns, def, nil)
	if err != nil {
		return nil, nil, err
	}
	if _, err := ev.Prog.MarkInProgress(ns, def, code); err != nil {
		return nil, nil, err
	}

	result, warnings, err := ev.preprocessExpr(code, ns, def, resolver.LocalNames{})
	if err != nil {
		return nil, warnings, err
	}

	var final value.Value
	switch result.(type) {
	case *value.Fn, *value.Macro:
		final = result
	default:
		final = value.NewCodeThunk(result, value.Location{Ns: ns, Def: def})
	}
	ev.Prog.WriteEvaled(ns, def, final)
	return final, warnings, nil
}

// preprocessExpr implements spec.md §4.5's per-head-shape recursion rules.
func (ev *Evaluator) preprocessExpr(expr value.Value, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	switch x := expr.(type) {
	case value.Symbol:
		resolved, warnings := resolver.Resolve(ev.Prog, ns, def, x.Name, locals)
		return resolved, warnings, nil

	case value.List:
		return ev.preprocessList(x, ns, def, locals)

	default:
		return expr, nil, nil
	}
}

func (ev *Evaluator) preprocessList(list value.List, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	if list.Count() == 0 {
		return list, nil, nil
	}
	headRaw, _ := list.Get(0)

	// Head is a Tag: rewrite `(:k m)` as `(calcit.core/get m :k)` (spec.md §4.5).
	if tag, ok := headRaw.(value.Tag); ok {
		if list.Count() != 2 {
			return nil, nil, NewError("tag-as-function call expects exactly 1 argument, got %d", list.Count()-1)
		}
		target, _ := list.Get(1)
		rewritten := value.NewList(value.Symbol{Name: "calcit.core/get", OriginNs: ns, OriginDef: def}, target, tag)
		return ev.preprocessList(rewritten, ns, def, locals)
	}

	// The reader already turns syntax names into SyntaxRef leaves.
	if sx, ok := headRaw.(value.SyntaxRef); ok {
		return ev.preprocessSyntax(sx, list, ns, def, locals)
	}

	var arityWarnings []resolver.Warning
	if headSym, ok := headRaw.(value.Symbol); ok {
		if _, isLocal := locals[headSym.Name]; !isLocal {
			if sx, ok := value.LookupSyntaxName(headSym.Name, ns); ok {
				return ev.preprocessSyntax(sx, list, ns, def, locals)
			}
			if refNs, refDef, isDefLike := asDefLookup(ev.Prog, ns, headSym.Name); isDefLike {
				if callee, err := ev.evaluateDefRef(refNs, refDef, nil); err == nil {
					switch c := callee.(type) {
					case *value.Macro:
						expanded, err := ev.expandMacro(c, list, ns, def)
						if err != nil {
							return nil, nil, err
						}
						return ev.preprocessExpr(expanded, ns, def, locals)
					case *value.Fn:
						// Head is a known Fn: check arity statically (spec.md
						// §4.5) before recursing on the arguments below.
						arityWarnings = checkCallArity(c, list.Count()-1, ns, def)
					}
				}
			}
		}
	}

	// generic case: preprocess head and every argument.
	head, warnings, err := ev.preprocessExpr(headRaw, ns, def, locals)
	warnings = append(warnings, arityWarnings...)
	if err != nil {
		return nil, warnings, err
	}
	items := []value.Value{head}
	for i := 1; i < list.Count(); i++ {
		argRaw, _ := list.Get(i)
		v, w, err := ev.preprocessExpr(argRaw, ns, def, locals)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		items = append(items, v)
	}
	return value.NewList(items...), warnings, nil
}

// asDefLookup mirrors enough of resolver.Resolve's ns-splitting logic to
// decide, before full resolution, whether a bare head name might name a
// macro def worth evaluating for expansion (current ns or calcit.core).
func asDefLookup(prog interface {
	HasDef(ns, def string) bool
}, ns, name string) (refNs, refDef string, ok bool) {
	if prog.HasDef(resolver.CoreNs, name) {
		return resolver.CoreNs, name, true
	}
	if prog.HasDef(ns, name) {
		return ns, name, true
	}
	return "", "", false
}

// checkCallArity implements spec.md §4.5's "Arity check (static)": walk
// formal and actual lists in lock-step for every declared arity of fn. `?`
// makes subsequent formals optional; `&` disables the check from that
// point on. If no arity accepts argCount, a warning is returned — the call
// still preprocesses, it is merely flagged.
func checkCallArity(fn *value.Fn, argCount int, ns, def string) []resolver.Warning {
	for _, a := range fn.Arities {
		required := len(a.Params)
		if a.OptionalAt >= 0 {
			required = a.OptionalAt
		}
		if a.HasRest {
			if argCount >= required {
				return nil
			}
			continue
		}
		if argCount >= required && argCount <= len(a.Params) {
			return nil
		}
	}
	return []resolver.Warning{{Ns: ns, Def: def, Message: fmt.Sprintf(
		"%s: no arity matches %d argument(s)", fn.Name, argCount)}}
}

// expandMacro applies a Macro to unevaluated argument forms in a fresh
// scope with its formal args bound, looping on Recur (spec.md §4.5 "apply
// the macro to the unevaluated arguments... loop on Recur values").
func (ev *Evaluator) expandMacro(m *value.Macro, callList value.List, ns, def string) (value.Value, error) {
	args := make([]value.Value, 0, callList.Count()-1)
	for i := 1; i < callList.Count(); i++ {
		a, _ := callList.Get(i)
		args = append(args, a)
	}
	arity, err := selectArity(m.Arities, len(args))
	if err != nil {
		return nil, NewError("macro %s: %s", m.Name, err.Error())
	}
	for {
		scope, err := bindArity(m.Scope, arity, args)
		if err != nil {
			return nil, NewError("macro %s: %s", m.Name, err.Error())
		}
		result, err := ev.evaluateBodyLines(arity.Body, scope, m.Ns, []Frame{{Ns: m.Ns, Def: m.Name, Kind: FrameMacro, Name: m.Name, Args: args}})
		if err != nil {
			return nil, err
		}
		if recur, ok := result.(value.Recur); ok {
			args = recur.Args
			continue
		}
		return result, nil
	}
}

// preprocessSyntax implements the per-syntax-form recursion shapes of
// spec.md §4.5's bulleted list.
func (ev *Evaluator) preprocessSyntax(sx value.SyntaxRef, list value.List, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	switch builtins.SyntaxID(sx.ID) {
	case builtins.SyntaxDefn, builtins.SyntaxDefmacro:
		isMacro := builtins.SyntaxID(sx.ID) == builtins.SyntaxDefmacro
		fnVal, warnings, err := ev.buildFnOrMacro(isMacro, list, ns, def, locals)
		if err != nil {
			return nil, warnings, err
		}
		return fnVal, warnings, nil

	case builtins.SyntaxLet:
		return ev.preprocessLetChain(list, ns, def, locals)

	case builtins.SyntaxQuote, builtins.SyntaxHintFn:
		// preserved unchanged: re-wrap head plus untouched args.
		return list, nil, nil

	case builtins.SyntaxQuasiquote:
		if list.Count() != 2 {
			return nil, nil, NewError("quasiquote expects exactly 1 argument")
		}
		body, _ := list.Get(1)
		preBody, warnings, err := ev.preprocessQuasiquoted(body, ns, def, locals)
		if err != nil {
			return nil, warnings, err
		}
		return value.NewList(sx, preBody), warnings, nil

	case builtins.SyntaxDefatom:
		// the name slot is a bare label, not a reference: preprocessing
		// it generically would resolve it as an unknown symbol and always
		// raise a spurious warning, so only the init-expr recurses.
		if list.Count() != 3 {
			return nil, nil, NewError("defatom expects (defatom name init-expr)")
		}
		nameRaw, _ := list.Get(1)
		initRaw, _ := list.Get(2)
		preInit, warnings, err := ev.preprocessExpr(initRaw, ns, def, locals)
		if err != nil {
			return nil, warnings, err
		}
		return value.NewList(sx, nameRaw, preInit), warnings, nil

	default:
		// if, eval, try, recur, reset!, macroexpand*, do: recurse
		// on every argument, keeping the syntax head as-is.
		items := []value.Value{sx}
		var warnings []resolver.Warning
		for i := 1; i < list.Count(); i++ {
			argRaw, _ := list.Get(i)
			v, w, err := ev.preprocessExpr(argRaw, ns, def, locals)
			warnings = append(warnings, w...)
			if err != nil {
				return nil, warnings, err
			}
			items = append(items, v)
		}
		return value.NewList(items...), warnings, nil
	}
}

// preprocessQuasiquoted walks a quasiquoted tree: `~` / `~@` children get
// full preprocessing (spec.md §4.5), every other node is left as a quoted
// literal.
func (ev *Evaluator) preprocessQuasiquoted(expr value.Value, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	list, ok := expr.(value.List)
	if !ok {
		return expr, nil, nil
	}
	if list.Count() == 2 {
		if head, ok := list.Get(0); ok {
			marker := ""
			switch h := head.(type) {
			case value.Symbol:
				marker = h.Name
			case value.RawRef:
				marker = h.Text
			case value.SyntaxRef:
				marker = h.Name
			}
			if marker == "~" || marker == "~@" {
				inner, _ := list.Get(1)
				pre, warnings, err := ev.preprocessExpr(inner, ns, def, locals)
				if err != nil {
					return nil, warnings, err
				}
				return value.NewList(value.RawRef{Text: marker}, pre), warnings, nil
			}
		}
	}
	items := make([]value.Value, 0, list.Count())
	var warnings []resolver.Warning
	for i := 0; i < list.Count(); i++ {
		v, _ := list.Get(i)
		pre, w, err := ev.preprocessQuasiquoted(v, ns, def, locals)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		items = append(items, pre)
	}
	return value.NewList(items...), warnings, nil
}

// preprocessLetChain preprocesses one `(&let (name expr) body...)` form: a
// single binding per call. A nested `&let` in the body is preprocessed by
// the ordinary recursion, one level per binding; chains are not fused.
func (ev *Evaluator) preprocessLetChain(list value.List, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	if list.Count() < 2 {
		return nil, nil, NewError("&let expects at least a binding form")
	}
	bindingRaw, _ := list.Get(1)
	binding, ok := bindingRaw.(value.List)
	if !ok || binding.Count() != 2 {
		return nil, nil, NewError("&let binding must be (name expr)")
	}
	nameRaw, _ := binding.Get(0)
	nameSym, ok := nameRaw.(value.Symbol)
	if !ok {
		return nil, nil, NewError("&let binding name must be a symbol")
	}
	exprRaw, _ := binding.Get(1)
	preExpr, warnings, err := ev.preprocessExpr(exprRaw, ns, def, locals)
	if err != nil {
		return nil, warnings, err
	}
	idx := value.InternLocal(nameSym.Name)
	childLocals := extendLocals(locals, nameSym.Name, idx)
	if w, shadowed := ev.checkShadow(nameSym.Name, ns, def); shadowed {
		warnings = append(warnings, w)
	}

	bodyForms := make([]value.Value, 0, list.Count()-2)
	for i := 2; i < list.Count(); i++ {
		v, _ := list.Get(i)
		bodyForms = append(bodyForms, v)
	}
	preBody := make([]value.Value, 0, len(bodyForms))
	for _, form := range bodyForms {
		v, w, err := ev.preprocessExpr(form, ns, def, childLocals)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		preBody = append(preBody, v)
	}
	letHead, _ := value.LookupSyntaxName("&let", ns)
	out := []value.Value{
		letHead,
		value.NewList(value.LocalRef{Name: nameSym.Name, Idx: idx}, preExpr),
	}
	out = append(out, preBody...)
	return value.NewList(out...), warnings, nil
}

func extendLocals(locals resolver.LocalNames, name string, idx value.LocalIdx) resolver.LocalNames {
	out := make(resolver.LocalNames, len(locals)+1)
	for k, v := range locals {
		out[k] = v
	}
	out[name] = idx
	return out
}

// buildFnOrMacro implements the eager `defn`/`defmacro` construction of
// spec.md §4.5 step 3: one or more arity clauses, each binding its
// parameter names (skipping `&`/`?` markers) before preprocessing its body.
func (ev *Evaluator) buildFnOrMacro(isMacro bool, list value.List, ns, def string, locals resolver.LocalNames) (value.Value, []resolver.Warning, error) {
	if list.Count() < 3 {
		return nil, nil, NewError("defn/defmacro expects a name and a parameter list")
	}
	nameRaw, _ := list.Get(1)
	nameSym, ok := nameRaw.(value.Symbol)
	name := def
	if ok {
		name = nameSym.Name
	}

	rawArities, err := splitArityClauses(list)
	if err != nil {
		return nil, nil, err
	}

	arities := make([]value.Arity, 0, len(rawArities))
	var warnings []resolver.Warning
	for _, ra := range rawArities {
		arity, w, err := ev.buildArity(ra, ns, def, locals)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, err
		}
		arities = append(arities, arity)
	}

	if isMacro {
		return value.NewMacro(name, ns, arities, nil), warnings, nil
	}
	return value.NewFn(name, ns, arities, nil), warnings, nil
}

type rawArity struct {
	Params value.List
	Body   []value.Value
}

// splitArityClauses recognizes both `(defn name [params] body...)` and
// multi-arity `(defn name ([p1] body) ([p1 p2] body))` shapes.
func splitArityClauses(list value.List) ([]rawArity, error) {
	first, ok := list.Get(2)
	if !ok {
		return nil, NewError("defn/defmacro missing parameter list")
	}
	firstList, ok := first.(value.List)
	if !ok {
		return nil, NewError("defn/defmacro parameter list must be a list")
	}
	if elem0, ok := firstList.Get(0); ok {
		if _, isList := elem0.(value.List); isList {
			var out []rawArity
			for i := 2; i < list.Count(); i++ {
				clauseRaw, _ := list.Get(i)
				clause, ok := clauseRaw.(value.List)
				if !ok || clause.Count() < 1 {
					return nil, NewError("malformed arity clause")
				}
				paramsRaw, _ := clause.Get(0)
				params, ok := paramsRaw.(value.List)
				if !ok {
					return nil, NewError("arity clause missing parameter vector")
				}
				var body []value.Value
				for j := 1; j < clause.Count(); j++ {
					v, _ := clause.Get(j)
					body = append(body, v)
				}
				out = append(out, rawArity{Params: params, Body: body})
			}
			return out, nil
		}
	}
	var body []value.Value
	for i := 3; i < list.Count(); i++ {
		v, _ := list.Get(i)
		body = append(body, v)
	}
	return []rawArity{{Params: firstList, Body: body}}, nil
}

func (ev *Evaluator) buildArity(ra rawArity, ns, def string, locals resolver.LocalNames) (value.Arity, []resolver.Warning, error) {
	var params []value.LocalIdx
	var restParam value.LocalIdx
	hasRest := false
	optionalAt := -1
	childLocals := make(resolver.LocalNames, len(locals))
	for k, v := range locals {
		childLocals[k] = v
	}
	var warnings []resolver.Warning

	for i := 0; i < ra.Params.Count(); i++ {
		elemRaw, _ := ra.Params.Get(i)
		if sx, isSyntax := elemRaw.(value.SyntaxRef); isSyntax {
			elemRaw = value.Symbol{Name: sx.Name}
		}
		sym, ok := elemRaw.(value.Symbol)
		if !ok {
			return value.Arity{}, warnings, NewError("parameter name must be a symbol")
		}
		switch sym.Name {
		case "&":
			hasRest = true
			i++
			if i >= ra.Params.Count() {
				return value.Arity{}, warnings, NewError("`&` must be followed by a rest parameter name")
			}
			restRaw, _ := ra.Params.Get(i)
			restSym, ok := restRaw.(value.Symbol)
			if !ok {
				return value.Arity{}, warnings, NewError("rest parameter name must be a symbol")
			}
			restParam = value.InternLocal(restSym.Name)
			childLocals[restSym.Name] = restParam
			if w, shadowed := ev.checkShadow(restSym.Name, ns, def); shadowed {
				warnings = append(warnings, w)
			}
		case "?":
			optionalAt = len(params)
		default:
			idx := value.InternLocal(sym.Name)
			childLocals[sym.Name] = idx
			params = append(params, idx)
			if w, shadowed := ev.checkShadow(sym.Name, ns, def); shadowed {
				warnings = append(warnings, w)
			}
		}
	}

	bodyVals := make([]value.Value, 0, len(ra.Body))
	for _, form := range ra.Body {
		v, w, err := ev.preprocessExpr(form, ns, def, childLocals)
		warnings = append(warnings, w...)
		if err != nil {
			return value.Arity{}, warnings, err
		}
		bodyVals = append(bodyVals, v)
	}

	return value.Arity{
		Params:     params,
		RestParam:  restParam,
		HasRest:    hasRest,
		OptionalAt: optionalAt,
		Body:       value.NewList(bodyVals...),
	}, warnings, nil
}

// checkShadow implements spec.md §4.5's "Shadow check": a local whose name
// collides with a built-in proc, syntax form, or calcit.core def still
// binds, but is reported.
func (ev *Evaluator) checkShadow(name, ns, def string) (resolver.Warning, bool) {
	if _, ok := value.LookupSyntaxName(name, ns); ok {
		return resolver.Warning{Ns: ns, Def: def, Message: fmt.Sprintf("local %q shadows a syntax form", name)}, true
	}
	if _, ok := value.LookupProcName(name); ok {
		return resolver.Warning{Ns: ns, Def: def, Message: fmt.Sprintf("local %q shadows a builtin proc", name)}, true
	}
	if ev.Prog.HasDef(resolver.CoreNs, name) {
		return resolver.Warning{Ns: ns, Def: def, Message: fmt.Sprintf("local %q shadows calcit.core/%s", name, name)}, true
	}
	return resolver.Warning{}, false
}
