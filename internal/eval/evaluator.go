package eval

import (
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
)

// Evaluator is the session object driving both preprocessing and
// evaluation over one Program (spec.md §9 "treat as a session object
// passed through evaluation rather than true globals").
type Evaluator struct {
	Prog        *program.Program
	CoreClasses map[value.Kind]value.ClassImpl
}

func New(prog *program.Program) *Evaluator {
	return &Evaluator{Prog: prog, CoreClasses: map[value.Kind]value.ClassImpl{}}
}

// EvaluateExpr is the evaluator's entry point (spec.md §4.6
// `evaluate_expr(expr, scope, current-ns, stack)`).
func (ev *Evaluator) EvaluateExpr(expr value.Value, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	switch x := expr.(type) {
	case nil:
		return value.Nil{}, nil
	case value.Nil, value.Bool, value.Number, value.Str, value.Tag,
		value.Record, value.Map, value.Set, *value.Fn, *value.Macro,
		value.ProcRef, value.SyntaxRef, value.CirruQuote, *value.Ref,
		value.Tuple, value.Buffer, value.Method, value.AnyRef,
		value.RawCode, value.Recur, value.RegisteredRef, value.RawRef:
		return expr, nil
	case value.LocalRef:
		v, ok := scope.Lookup(x.Idx)
		if !ok {
			return nil, NewError("cannot find local %q in scope", x.Name).WithFrame(Frame{Ns: ns, Kind: FrameFn, Name: x.Name})
		}
		return v, nil
	case value.DefRef:
		return ev.evaluateDefRef(x.Ns, x.Def, stack)
	case value.Symbol:
		return nil, NewError("cannot find variable %q (unresolved symbol in %s/%s)", x.Name, x.OriginNs, x.OriginDef)
	case *value.Thunk:
		return ev.evaluateThunk(x, stack)
	case value.List:
		return ev.evaluateCall(x, scope, ns, stack)
	default:
		return expr, nil
	}
}

// evaluateDefRef looks up (ns, def) in the evaluated table, lazily
// preprocessing it if it has never been touched (spec.md §4.6: "look up in
// evaluated table; if it's a Thunk{Code, ...}, evaluate it ... in the def's
// ns, not the caller's").
func (ev *Evaluator) evaluateDefRef(ns, def string, stack []Frame) (value.Value, error) {
	v, ok := ev.Prog.Evaled(ns, def)
	if !ok {
		preprocessed, warnings, err := ev.PreprocessNsDef(ns, def)
		if err != nil {
			return nil, err
		}
		_ = warnings
		v = preprocessed
	}
	if th, isThunk := v.(*value.Thunk); isThunk {
		return ev.evaluateThunk(th, stack)
	}
	return v, nil
}

func (ev *Evaluator) evaluateThunk(th *value.Thunk, stack []Frame) (value.Value, error) {
	if th.State == value.ThunkStateEvaled {
		return th.Evaled, nil
	}
	if th.State == value.ThunkStateInProgress {
		return nil, NewError("circular thunk reference at %s/%s", th.Location.Ns, th.Location.Def)
	}
	result, err := ev.EvaluateExpr(th.Code, nil, th.Location.Ns, stack)
	if err != nil {
		return nil, err
	}
	th.Resolve(result)
	ev.Prog.WriteEvaled(th.Location.Ns, th.Location.Def, result)
	return result, nil
}

func (ev *Evaluator) evaluateCall(list value.List, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	if list.Count() == 0 {
		return list, nil
	}
	headExpr, _ := list.Get(0)

	if sx, ok := headExpr.(value.SyntaxRef); ok {
		return ev.evalSyntax(sx, list, scope, ns, stack)
	}

	head, err := ev.EvaluateExpr(headExpr, scope, ns, stack)
	if err != nil {
		return nil, err
	}

	switch h := head.(type) {
	case *value.Fn:
		args, err := ev.evalArgs(list, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.ApplyFn(h, args, stack)
	case *value.Macro:
		return nil, NewError("macro %s reached the evaluator unexpanded — a preprocessor bug", h.Name)
	case value.SyntaxRef:
		return ev.evalSyntax(h, list, scope, ns, stack)
	case value.ProcRef:
		args, err := ev.evalArgs(list, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.callProc(h, args, stack)
	case value.Method:
		args, err := ev.evalArgs(list, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.dispatchMethod(h, args, stack)
	case value.RegisteredRef:
		args, err := ev.evalArgs(list, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		return ev.callRegistered(h, args, stack)
	default:
		return nil, NewError("value of kind %d is not callable", head.Kind())
	}
}

func (ev *Evaluator) evalArgs(list value.List, scope *value.Scope, ns string, stack []Frame) ([]value.Value, error) {
	n := list.Count()
	args := make([]value.Value, 0, n-1)
	for i := 1; i < n; i++ {
		argExpr, _ := list.Get(i)
		v, err := ev.EvaluateExpr(argExpr, scope, ns, stack)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// ApplyFn calls a closure, looping on Recur per spec.md §4.6 ("If the
// final line produces a Recur, restart with its argument vector").
func (ev *Evaluator) ApplyFn(fn *value.Fn, args []value.Value, stack []Frame) (value.Value, error) {
	frame := Frame{Ns: fn.Ns, Def: fn.Name, Kind: FrameFn, Name: fn.Name, Args: args}
	nextStack := append(append([]Frame{}, stack...), frame)

	arity, err := selectArity(fn.Arities, len(args))
	if err != nil {
		return nil, &CalcitError{Message: err.Error(), Stack: nextStack}
	}

	for {
		bodyScope, err := bindArity(fn.Scope, arity, args)
		if err != nil {
			return nil, &CalcitError{Message: err.Error(), Stack: nextStack}
		}
		result, err := ev.evaluateBodyLines(arity.Body, bodyScope, fn.Ns, nextStack)
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

func (ev *Evaluator) evaluateBodyLines(body value.Value, scope *value.Scope, ns string, stack []Frame) (value.Value, error) {
	list, ok := body.(value.List)
	if !ok {
		return ev.EvaluateExpr(body, scope, ns, stack)
	}
	var last value.Value = value.Nil{}
	var err error
	list.Each(func(_ int, line value.Value) {
		if err != nil {
			return
		}
		last, err = ev.EvaluateExpr(line, scope, ns, stack)
	})
	return last, err
}
