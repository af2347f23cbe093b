package eval

import (
	"fmt"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/value"
)

// evalSyntax dispatches a preprocessed syntax-form call at evaluation time
// (spec.md §4.6 "Syntax semantics"). `defn`/`defmacro` never reach here in
// the normal flow since the preprocessor eagerly replaces them with Fn/Macro
// values (spec.md §4.5 step 3); they're handled defensively all the same.
func (ev *Evaluator) evalSyntax(sx value.SyntaxRef, list value.List, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	arg := func(i int) value.Value {
		v, _ := list.Get(i)
		return v
	}
	frame := Frame{Ns: ns, Kind: FrameSyntax, Name: sx.Name}

	switch builtins.SyntaxID(sx.ID) {
	case builtins.SyntaxIf:
		if list.Count() < 3 || list.Count() > 4 {
			return nil, NewError("if expects (if cond then [else])").WithFrame(frame)
		}
		cond, err := ev.EvaluateExpr(arg(1), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		if isTruthy(cond) {
			return ev.EvaluateExpr(arg(2), scope, ns, stack)
		}
		if list.Count() == 4 {
			return ev.EvaluateExpr(arg(3), scope, ns, stack)
		}
		return value.Nil{}, nil

	case builtins.SyntaxDo:
		var last value.Value = value.Nil{}
		for i := 1; i < list.Count(); i++ {
			v, err := ev.EvaluateExpr(arg(i), scope, ns, stack)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case builtins.SyntaxLet:
		return ev.evalLet(list, scope, ns, stack)

	case builtins.SyntaxQuote:
		if list.Count() != 2 {
			return nil, NewError("quote expects exactly 1 argument").WithFrame(frame)
		}
		return arg(1), nil

	case builtins.SyntaxQuasiquote:
		if list.Count() != 2 {
			return nil, NewError("quasiquote expects exactly 1 argument").WithFrame(frame)
		}
		return ev.evalQuasiquote(arg(1), scope, ns, stack)

	case builtins.SyntaxUnquote, builtins.SyntaxUnquoteSplice:
		return nil, NewError("%s used outside quasiquote", sx.Name).WithFrame(frame)

	case builtins.SyntaxEval:
		if list.Count() != 2 {
			return nil, NewError("eval expects exactly 1 argument").WithFrame(frame)
		}
		code, err := ev.EvaluateExpr(arg(1), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.EvaluateExpr(code, scope, ns, stack)

	case builtins.SyntaxDefn, builtins.SyntaxDefmacro:
		fnVal, _, err := ev.buildFnOrMacro(builtins.SyntaxID(sx.ID) == builtins.SyntaxDefmacro, list, ns, "", localsFromScope(scope))
		return fnVal, err

	case builtins.SyntaxTry:
		if list.Count() != 3 {
			return nil, NewError("try expects (try body handler)").WithFrame(frame)
		}
		result, evalErr := ev.EvaluateExpr(arg(1), scope, ns, stack)
		if evalErr == nil {
			return result, nil
		}
		handler, err := ev.EvaluateExpr(arg(2), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.ApplyValue(handler, []value.Value{value.Str(evalErr.Error())}, stack)

	case builtins.SyntaxRecur:
		args := make([]value.Value, 0, list.Count()-1)
		for i := 1; i < list.Count(); i++ {
			v, err := ev.EvaluateExpr(arg(i), scope, ns, stack)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return value.Recur{Args: args}, nil

	case builtins.SyntaxDefatom:
		if list.Count() != 3 {
			return nil, NewError("defatom expects (defatom name init-expr)").WithFrame(frame)
		}
		name, err := atomName(arg(1))
		if err != nil {
			return nil, err
		}
		path := ns + "/" + name
		if existing, ok := ev.Prog.LookupRef(path); ok {
			return existing, nil
		}
		init, err := ev.EvaluateExpr(arg(2), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		ref, _ := ev.Prog.Ref(path, init)
		return ref, nil

	case builtins.SyntaxResetBang:
		if list.Count() != 3 {
			return nil, NewError("reset! expects (reset! ref new-value)").WithFrame(frame)
		}
		target, err := ev.EvaluateExpr(arg(1), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		ref, ok := target.(*value.Ref)
		if !ok {
			return nil, NewError("reset! first argument must be a ref").WithFrame(frame)
		}
		newVal, err := ev.EvaluateExpr(arg(2), scope, ns, stack)
		if err != nil {
			return nil, err
		}
		ref.Reset(newVal)
		return newVal, nil

	case builtins.SyntaxHintFn:
		return value.Nil{}, nil

	case builtins.SyntaxMacroexpand, builtins.SyntaxMacroexpand1, builtins.SyntaxMacroexpandAll:
		return ev.evalMacroexpand(builtins.SyntaxID(sx.ID), arg(1), ns, stack)

	case builtins.SyntaxArgSpread, builtins.SyntaxArgOptional:
		return nil, NewError("%s used outside a parameter list", sx.Name).WithFrame(frame)

	default:
		return nil, NewError("unimplemented syntax form %q", sx.Name).WithFrame(frame)
	}
}

func isTruthy(v value.Value) bool {
	switch x := v.(type) {
	case value.Nil:
		return false
	case value.Bool:
		return bool(x)
	default:
		return true
	}
}

// evalLet evaluates a single (preprocessed) `&let` binding and its body.
func (ev *Evaluator) evalLet(list value.List, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	if list.Count() < 2 {
		return nil, NewError("&let expects at least a binding form")
	}
	bindingRaw, _ := list.Get(1)
	binding, ok := bindingRaw.(value.List)
	if !ok || binding.Count() != 2 {
		return nil, NewError("&let binding must be (name expr)")
	}
	nameRaw, _ := binding.Get(0)
	localRef, ok := nameRaw.(value.LocalRef)
	if !ok {
		return nil, NewError("&let binding name must already be resolved to a local")
	}
	exprRaw, _ := binding.Get(1)
	val, err := ev.EvaluateExpr(exprRaw, scope, ns, stack)
	if err != nil {
		return nil, err
	}
	bodyScope := scope.Push(localRef.Idx, val)

	var last value.Value = value.Nil{}
	for i := 2; i < list.Count(); i++ {
		v, _ := list.Get(i)
		result, err := ev.EvaluateExpr(v, bodyScope, ns, stack)
		if err != nil {
			return nil, err
		}
		last = result
	}
	return last, nil
}

// evalQuasiquote walks a quasiquoted tree produced by preprocessQuasiquoted,
// evaluating `~`/`~@` nodes and splicing their results in (spec.md §4.6).
func (ev *Evaluator) evalQuasiquote(form value.Value, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	list, ok := form.(value.List)
	if !ok {
		return form, nil
	}
	if list.Count() == 2 {
		if head, _ := list.Get(0); isUnquoteMarker(head, "~") {
			inner, _ := list.Get(1)
			return ev.EvaluateExpr(inner, scope, ns, stack)
		}
	}
	items := make([]value.Value, 0, list.Count())
	for i := 0; i < list.Count(); i++ {
		v, _ := list.Get(i)
		if sub, ok := v.(value.List); ok && sub.Count() == 2 {
			if head, _ := sub.Get(0); isUnquoteMarker(head, "~@") {
				inner, _ := sub.Get(1)
				spliced, err := ev.EvaluateExpr(inner, scope, ns, stack)
				if err != nil {
					return nil, err
				}
				splicedList, ok := spliced.(value.List)
				if !ok {
					return nil, NewError("~@ target must evaluate to a list")
				}
				splicedList.Each(func(_ int, sv value.Value) { items = append(items, sv) })
				continue
			}
		}
		nested, err := ev.evalQuasiquote(v, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		items = append(items, nested)
	}
	return value.NewList(items...), nil
}

func isUnquoteMarker(v value.Value, text string) bool {
	if raw, ok := v.(value.RawRef); ok {
		return raw.Text == text
	}
	return false
}

// evalMacroexpand drives the macro expander without evaluating the result
// (spec.md §4.6): -1 returns the first Recur from the macro body if any,
// the unqualified form continues until no Recur remains, -all recursively
// expands macros found inside the result.
func (ev *Evaluator) evalMacroexpand(kind builtins.SyntaxID, form value.Value, ns string, stack []Frame) (value.Value, error) {
	list, ok := form.(value.List)
	if !ok || list.Count() == 0 {
		return form, nil
	}
	headRaw, _ := list.Get(0)
	ref, ok := headRaw.(value.DefRef)
	if !ok {
		return form, nil
	}
	callee, err := ev.evaluateDefRef(ref.Ns, ref.Def, stack)
	if err != nil {
		return nil, err
	}
	macro, ok := callee.(*value.Macro)
	if !ok {
		return form, nil
	}
	expanded, err := ev.expandMacro(macro, list, ns, ns)
	if err != nil {
		return nil, err
	}
	if kind == builtins.SyntaxMacroexpandAll {
		if sub, ok := expanded.(value.List); ok && sub.Count() > 0 {
			return ev.evalMacroexpand(kind, sub, ns, stack)
		}
	}
	return expanded, nil
}

func atomName(v value.Value) (string, error) {
	switch x := v.(type) {
	case value.Symbol:
		return x.Name, nil
	case value.LocalRef:
		return x.Name, nil
	case value.DefRef:
		return x.Def, nil
	case value.Str:
		return string(x), nil
	default:
		return "", fmt.Errorf("defatom name must be a symbol, got kind %d", v.Kind())
	}
}

// localsFromScope is a defensive fallback for the (normally unreached)
// nested defn/defmacro case evalSyntax handles: without a static locals
// map at hand, preprocessing proceeds with none, which is always correct
// for top-level forms since the preprocessor already handles those eagerly.
func localsFromScope(scope *value.Scope) map[string]value.LocalIdx {
	return map[string]value.LocalIdx{}
}
