package eval

import (
	"fmt"

	"github.com/hflisp/calcit/internal/value"
)

// selectArity picks the arity clause matching argc, preferring an exact
// fixed-arity match and falling back to the first variadic clause whose
// fixed-prefix length is satisfied (spec.md §4.2 "fn/defn may declare
// several arities; dispatch picks by argument count").
func selectArity(arities []value.Arity, argc int) (value.Arity, error) {
	for _, a := range arities {
		if !a.HasRest && len(a.Params) == argc {
			return a, nil
		}
	}
	for _, a := range arities {
		if a.HasRest && argc >= len(a.Params) {
			return a, nil
		}
	}
	return value.Arity{}, fmt.Errorf("no matching arity for %d argument(s)", argc)
}

// bindArity pushes one Scope frame per declared parameter, spilling any
// extra trailing args into the rest-param as a List when HasRest is set
// (spec.md §4.2).
func bindArity(parent *value.Scope, a value.Arity, args []value.Value) (*value.Scope, error) {
	if !a.HasRest && len(args) != len(a.Params) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(a.Params), len(args))
	}
	if a.HasRest && len(args) < len(a.Params) {
		return nil, fmt.Errorf("expected at least %d argument(s), got %d", len(a.Params), len(args))
	}
	scope := parent
	for i, idx := range a.Params {
		scope = scope.Push(idx, args[i])
	}
	if a.HasRest {
		scope = scope.Push(a.RestParam, value.NewList(args[len(a.Params):]...))
	}
	return scope, nil
}

// ApplyValue calls a Fn, Proc or Method value uniformly (any other kind,
// a Macro included, is an error),
// used by combinator procs like `apply`/`map`/`each` that take a callable
// argument (spec.md §4.6 "a handful of procs... need a callback into the
// evaluator's own apply logic").
func (ev *Evaluator) ApplyValue(callee value.Value, args []value.Value, stack []Frame) (value.Value, error) {
	switch c := callee.(type) {
	case *value.Fn:
		return ev.ApplyFn(c, args, stack)
	case value.ProcRef:
		return ev.callProc(c, args, stack)
	case value.Method:
		return ev.dispatchMethod(c, args, stack)
	default:
		return nil, NewError("value of kind %d is not callable", callee.Kind())
	}
}

// classOf resolves the class record used for `.method` dispatch (spec.md
// §4.6): Tuple/Record carry an embedded class; built-in collection kinds
// fall back to a well-known core class cached on the Evaluator at startup
// (spec.md "Re-architect as a small interface object... core records
// should be cached at evaluator startup rather than re-resolved per call").
func (ev *Evaluator) classOf(v value.Value) (value.ClassImpl, bool) {
	switch x := v.(type) {
	case value.Tuple:
		if x.Class != nil {
			return *x.Class, true
		}
	case value.Record:
		if len(x.Classes) > 0 {
			return x.Classes[0], true
		}
	}
	c, ok := ev.CoreClasses[v.Kind()]
	return c, ok
}

// dispatchMethod implements spec.md §4.6's Method evaluation rule: deduce
// the receiver's class, look up name in its method field list, and invoke
// or access depending on MethodKind.
func (ev *Evaluator) dispatchMethod(m value.Method, args []value.Value, stack []Frame) (value.Value, error) {
	if len(args) == 0 {
		return nil, NewError("method call %q has no receiver", m.Name)
	}
	receiver := args[0]
	class, ok := ev.classOf(receiver)
	if !ok {
		return nil, NewError("value of kind %d has no class for method %q", receiver.Kind(), m.Name)
	}
	found, ok := class.Methods.Get(value.NewTag(m.Name))
	if !ok {
		var known []string
		class.Methods.Each(func(k, _ value.Value) {
			if t, isTag := k.(value.Tag); isTag {
				known = append(known, t.Name())
			}
		})
		return nil, NewError("class %s has no method %q; known methods: %v", class.Name.Name(), m.Name, known)
	}

	switch m.MethodKind {
	case value.MethodAccess, value.MethodAccessOptional:
		return found, nil
	default: // MethodInvoke, MethodInvokeNative, MethodInvokeNativeOptional
		callArgs := args
		if m.MethodKind == value.MethodInvokeNative || m.MethodKind == value.MethodInvokeNativeOptional {
			callArgs = args[1:]
		}
		return ev.ApplyValue(found, callArgs, stack)
	}
}
