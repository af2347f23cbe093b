package eval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/value"
)

// callProc dispatches a ProcRef call to its concrete Go implementation
// (spec.md §3 "~300 builtin operations, identified by an enum for dispatch
// speed"). A handful of procs (map/filter/each/foldl/apply) call back into
// the evaluator's own ApplyValue to invoke a callable argument.
func (ev *Evaluator) callProc(p value.ProcRef, args []value.Value, stack []Frame) (value.Value, error) {
	frame := Frame{Kind: FrameProc, Name: p.Name, Args: args}
	result, err := ev.dispatchProc(builtins.ProcID(p.ID), args, stack)
	if err != nil {
		ce, ok := err.(*CalcitError)
		if !ok {
			ce = NewError("%s", err.Error())
		}
		if len(ce.Stack) == 0 && len(stack) > 0 {
			out := *ce
			out.Stack = append([]Frame{}, stack...)
			ce = &out
		}
		return nil, ce.WithFrame(frame)
	}
	return result, nil
}

// callRegistered dispatches a RegisteredRef call to the embedder-injected
// proc stored under its alias (spec.md §3 "Registered(alias)"). Unlike
// callProc, there is no enum dispatch table: the alias is looked up in the
// program's registered-proc map, filled in at startup by package registered.
func (ev *Evaluator) callRegistered(r value.RegisteredRef, args []value.Value, stack []Frame) (value.Value, error) {
	frame := Frame{Kind: FrameProc, Name: r.Alias, Args: args}
	fn, ok := ev.Prog.LookupRegistered(r.Alias)
	if !ok {
		return nil, NewError("no registered proc under alias %q", r.Alias).WithFrame(frame)
	}
	result, err := fn(args)
	if err != nil {
		if ce, ok := err.(*CalcitError); ok {
			return nil, ce.WithFrame(frame)
		}
		return nil, NewError("%s", err.Error()).WithFrame(frame)
	}
	return result, nil
}

func (ev *Evaluator) dispatchProc(id builtins.ProcID, args []value.Value, stack []Frame) (value.Value, error) {
	switch id {
	// arithmetic & comparison
	case builtins.ProcAdd:
		return numFold(args, 0, func(a, b float64) float64 { return a + b })
	case builtins.ProcSub:
		return numSub(args)
	case builtins.ProcMul:
		return numFold(args, 1, func(a, b float64) float64 { return a * b })
	case builtins.ProcDiv:
		return numDiv(args)
	case builtins.ProcMod:
		return numMod(args, false)
	case builtins.ProcRem:
		return numMod(args, true)
	case builtins.ProcEq:
		return value.Bool(arity2(args) && value.Equal(args[0], args[1])), checkArity(args, 2)
	case builtins.ProcNotEq:
		return value.Bool(arity2(args) && !value.Equal(args[0], args[1])), checkArity(args, 2)
	case builtins.ProcLt:
		return cmpBool(args, func(c int) bool { return c < 0 })
	case builtins.ProcLte:
		return cmpBool(args, func(c int) bool { return c <= 0 })
	case builtins.ProcGt:
		return cmpBool(args, func(c int) bool { return c > 0 })
	case builtins.ProcGte:
		return cmpBool(args, func(c int) bool { return c >= 0 })
	case builtins.ProcAnd:
		for _, a := range args {
			if !isTruthy(a) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	case builtins.ProcOr:
		for _, a := range args {
			if isTruthy(a) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case builtins.ProcNot:
		if err := checkArity(args, 1); err != nil {
			return nil, err
		}
		return value.Bool(!isTruthy(args[0])), nil
	case builtins.ProcInc:
		n, err := asNumber(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Number(n + 1), nil
	case builtins.ProcDec:
		n, err := asNumber(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Number(n - 1), nil

	// predicates
	case builtins.ProcNilQuestion:
		return kindPredicate(args, value.KindNil)
	case builtins.ProcBoolQuestion:
		return kindPredicate(args, value.KindBool)
	case builtins.ProcNumberQuestion:
		return kindPredicate(args, value.KindNumber)
	case builtins.ProcStringQuestion:
		return kindPredicate(args, value.KindStr)
	case builtins.ProcListQuestion:
		return kindPredicate(args, value.KindList)
	case builtins.ProcMapQuestion:
		return kindPredicate(args, value.KindMap)
	case builtins.ProcSetQuestion:
		return kindPredicate(args, value.KindSet)
	case builtins.ProcFnQuestion:
		return kindPredicate(args, value.KindFn)
	case builtins.ProcTagQuestion:
		return kindPredicate(args, value.KindTag)
	case builtins.ProcRecordQuestion:
		return kindPredicate(args, value.KindRecord)
	case builtins.ProcTupleQuestion:
		return kindPredicate(args, value.KindTuple)

	// list ops
	case builtins.ProcCons:
		if err := checkArity(args, 2); err != nil {
			return nil, err
		}
		l, ok := args[1].(value.List)
		if !ok {
			return nil, fmt.Errorf("cons second argument must be a list")
		}
		return l.Prepend(args[0]), nil
	case builtins.ProcFirst:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		v, ok := l.Get(0)
		if !ok {
			return value.Nil{}, nil
		}
		return v, nil
	case builtins.ProcRest:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		return l.Rest(), nil
	case builtins.ProcNth:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		idx, err := asNumber(args, 1)
		if err != nil {
			return nil, err
		}
		v, ok := l.Get(int(idx))
		if !ok {
			return value.Nil{}, nil
		}
		return v, nil
	case builtins.ProcCount:
		return countOf(args)
	case builtins.ProcEmptyQuestion:
		n, err := countOf(args)
		if err != nil {
			return nil, err
		}
		return value.Bool(n.(value.Number) == 0), nil
	case builtins.ProcReverse:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		return l.Reverse(), nil
	case builtins.ProcConcat:
		var out value.List
		for _, a := range args {
			l, ok := a.(value.List)
			if !ok {
				return nil, fmt.Errorf("concat arguments must be lists")
			}
			out = out.Concat(l)
		}
		return out, nil
	case builtins.ProcSlice:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		from, _ := asNumber(args, 1)
		to := float64(l.Count())
		if len(args) > 2 {
			to, _ = asNumber(args, 2)
		}
		items := l.Slice()
		fi, ti := clampRange(int(from), int(to), len(items))
		return value.NewList(items[fi:ti]...), nil
	case builtins.ProcSort:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		items := append([]value.Value{}, l.Slice()...)
		sort.SliceStable(items, func(i, j int) bool { return value.Compare(items[i], items[j]) < 0 })
		return value.NewList(items...), nil
	case builtins.ProcFoldl:
		return ev.procFoldl(args, stack)
	case builtins.ProcMapList:
		return ev.procMapList(args, stack)
	case builtins.ProcFilterList:
		return ev.procFilterList(args, stack)
	case builtins.ProcEach:
		return ev.procEach(args, stack)
	case builtins.ProcApply:
		return ev.procApply(args, stack)
	case builtins.ProcFlatten:
		l, err := asList(args, 0)
		if err != nil {
			return nil, err
		}
		var out []value.Value
		l.Each(func(_ int, v value.Value) {
			if sub, ok := v.(value.List); ok {
				out = append(out, sub.Slice()...)
			} else {
				out = append(out, v)
			}
		})
		return value.NewList(out...), nil

	// map ops
	case builtins.ProcGet:
		return procGet(args)
	case builtins.ProcAssoc:
		return procAssoc(args)
	case builtins.ProcDissoc:
		m, err := asMap(args, 0)
		if err != nil {
			return nil, err
		}
		return m.Dissoc(args[1]), nil
	case builtins.ProcContainsQuestion:
		return procContains(args)
	case builtins.ProcKeys:
		m, err := asMap(args, 0)
		if err != nil {
			return nil, err
		}
		return value.SetFromItems(m.Keys()...), nil
	case builtins.ProcVals:
		m, err := asMap(args, 0)
		if err != nil {
			return nil, err
		}
		return value.NewList(m.Vals()...), nil
	case builtins.ProcMerge:
		out := value.NewMap()
		for _, a := range args {
			m, ok := a.(value.Map)
			if !ok {
				return nil, fmt.Errorf("merge arguments must be maps")
			}
			out = out.Merge(m)
		}
		return out, nil
	case builtins.ProcMapToList:
		m, err := asMap(args, 0)
		if err != nil {
			return nil, err
		}
		var out []value.Value
		m.Each(func(k, v value.Value) { out = append(out, value.NewList(k, v)) })
		return value.NewList(out...), nil

	// set ops
	case builtins.ProcSetInclude:
		s, err := asSet(args, 0)
		if err != nil {
			return nil, err
		}
		return s.Include(args[1]), nil
	case builtins.ProcSetExclude:
		s, err := asSet(args, 0)
		if err != nil {
			return nil, err
		}
		return s.Exclude(args[1]), nil
	case builtins.ProcSetUnion:
		a, err := asSet(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := asSet(args, 1)
		if err != nil {
			return nil, err
		}
		return a.Union(b), nil
	case builtins.ProcSetIntersection:
		a, err := asSet(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := asSet(args, 1)
		if err != nil {
			return nil, err
		}
		return a.Intersection(b), nil
	case builtins.ProcSetDifference:
		a, err := asSet(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := asSet(args, 1)
		if err != nil {
			return nil, err
		}
		return a.Difference(b), nil

	// string ops
	case builtins.ProcStr:
		var b strings.Builder
		for _, a := range args {
			b.WriteString(value.Display(a))
		}
		return value.Str(b.String()), nil
	case builtins.ProcStrConcat:
		var b strings.Builder
		for _, a := range args {
			s, err := asString(a)
			if err != nil {
				return nil, err
			}
			b.WriteString(s)
		}
		return value.Str(b.String()), nil
	case builtins.ProcStrLen:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Number(len([]rune(s))), nil
	case builtins.ProcSubstr:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		from, _ := asNumber(args, 1)
		runes := []rune(s)
		to := float64(len(runes))
		if len(args) > 2 {
			to, _ = asNumber(args, 2)
		}
		fi, ti := clampRange(int(from), int(to), len(runes))
		return value.Str(string(runes[fi:ti])), nil
	case builtins.ProcStrSplit:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		sep, err := asStringArg(args, 1)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(s, sep)
		items := make([]value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.Str(p)
		}
		return value.NewList(items...), nil
	case builtins.ProcStrTrim:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Str(strings.TrimSpace(s)), nil
	case builtins.ProcStrReplace:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		from, err := asStringArg(args, 1)
		if err != nil {
			return nil, err
		}
		to, err := asStringArg(args, 2)
		if err != nil {
			return nil, err
		}
		return value.Str(strings.ReplaceAll(s, from, to)), nil
	case builtins.ProcStrUpper:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Str(strings.ToUpper(s)), nil
	case builtins.ProcStrLower:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Str(strings.ToLower(s)), nil
	case builtins.ProcStrIndexOf:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		sub, err := asStringArg(args, 1)
		if err != nil {
			return nil, err
		}
		idx := strings.Index(s, sub)
		if idx < 0 {
			return value.Nil{}, nil
		}
		return value.Number(idx), nil
	case builtins.ProcParseFloat:
		s, err := asStringArg(args, 0)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("parse-float: %w", err)
		}
		return value.Number(f), nil

	// records/tuples
	case builtins.ProcNewRecord:
		return procNewRecord(args)
	case builtins.ProcRecordGet:
		r, err := asRecord(args, 0)
		if err != nil {
			return nil, err
		}
		tag, err := asTag(args, 1)
		if err != nil {
			return nil, err
		}
		v, ok := r.Get(tag)
		if !ok {
			return nil, fmt.Errorf("record has no field %q", tag.Name())
		}
		return v, nil
	case builtins.ProcRecordAssoc:
		r, err := asRecord(args, 0)
		if err != nil {
			return nil, err
		}
		tag, err := asTag(args, 1)
		if err != nil {
			return nil, err
		}
		if err := checkArity(args, 3); err != nil {
			return nil, err
		}
		updated, ok := r.Assoc(tag, args[2])
		if !ok {
			return nil, fmt.Errorf("record has no field %q", tag.Name())
		}
		return updated, nil
	case builtins.ProcTupleProc, builtins.ProcNativeTuple:
		if len(args) == 0 {
			return nil, fmt.Errorf("tuple expects a tag as its first argument")
		}
		tag, err := asTag(args, 0)
		if err != nil {
			return nil, err
		}
		return value.Tuple{Tag: tag, Extra: append([]value.Value{}, args[1:]...)}, nil

	// refs
	case builtins.ProcDeref:
		if err := checkArity(args, 1); err != nil {
			return nil, err
		}
		ref, ok := args[0].(*value.Ref)
		if !ok {
			return nil, fmt.Errorf("deref expects a ref")
		}
		return ref.Deref(), nil
	case builtins.ProcAddWatch:
		if err := checkArity(args, 3); err != nil {
			return nil, err
		}
		ref, ok := args[0].(*value.Ref)
		if !ok {
			return nil, fmt.Errorf("add-watch first argument must be a ref")
		}
		tag, err := asTag(args, 1)
		if err != nil {
			return nil, err
		}
		fn, ok := args[2].(*value.Fn)
		if !ok {
			return nil, fmt.Errorf("add-watch watcher must be a fn")
		}
		err = ref.AddWatch(tag.Name(), func(_ string, _ *value.Ref, oldVal, newVal value.Value) {
			_, _ = ev.ApplyFn(fn, []value.Value{newVal, oldVal}, stack)
		})
		if err != nil {
			return nil, err
		}
		return value.Nil{}, nil
	case builtins.ProcRemoveWatch:
		if err := checkArity(args, 2); err != nil {
			return nil, err
		}
		ref, ok := args[0].(*value.Ref)
		if !ok {
			return nil, fmt.Errorf("remove-watch first argument must be a ref")
		}
		tag, err := asTag(args, 1)
		if err != nil {
			return nil, err
		}
		return value.Nil{}, ref.RemoveWatch(tag.Name())

	// meta / introspection
	case builtins.ProcTypeOf:
		if err := checkArity(args, 1); err != nil {
			return nil, err
		}
		return value.NewTag(kindName(args[0].Kind())), nil
	case builtins.ProcPrStr:
		if err := checkArity(args, 1); err != nil {
			return nil, err
		}
		return value.Str(value.Display(args[0])), nil
	case builtins.ProcGensym:
		prefix := "G"
		if len(args) > 0 {
			if s, err := asString(args[0]); err == nil {
				prefix = s
			}
		}
		return value.Symbol{Name: fmt.Sprintf("%s__%d", prefix, nextGensym())}, nil
	case builtins.ProcIdenticalQuestion:
		if err := checkArity(args, 2); err != nil {
			return nil, err
		}
		return value.Bool(identical(args[0], args[1])), nil

	// effects / io
	case builtins.ProcPrintln:
		printArgs(args, false)
		return value.Nil{}, nil
	case builtins.ProcEprintln:
		printArgs(args, true)
		return value.Nil{}, nil
	case builtins.ProcRaise:
		msg := "raise"
		if len(args) > 0 {
			msg = value.Display(args[0])
		}
		return nil, NewError("%s", msg)
	case builtins.ProcReadFile, builtins.ProcWriteFile:
		return nil, fmt.Errorf("%s is not available in this evaluation core (no filesystem access)", nameOfProc(id))

	default:
		return nil, fmt.Errorf("unimplemented proc %q", nameOfProc(id))
	}
}

func nameOfProc(id builtins.ProcID) string { return builtins.NameOf(id) }

var gensymSeq uint64

func nextGensym() uint64 { return atomic.AddUint64(&gensymSeq, 1) }

func identical(a, b value.Value) bool {
	switch x := a.(type) {
	case *value.Fn:
		y, ok := b.(*value.Fn)
		return ok && x.Identity == y.Identity
	case *value.Macro:
		y, ok := b.(*value.Macro)
		return ok && x.Identity == y.Identity
	case *value.Ref:
		y, ok := b.(*value.Ref)
		return ok && x == y
	default:
		return value.Equal(a, b)
	}
}

func kindName(k value.Kind) string {
	names := map[value.Kind]string{
		value.KindNil: "nil", value.KindBool: "bool", value.KindNumber: "number",
		value.KindStr: "string", value.KindTag: "tag", value.KindSymbol: "symbol",
		value.KindList: "list", value.KindSet: "set", value.KindMap: "map",
		value.KindRecord: "record", value.KindTuple: "tuple", value.KindFn: "fn",
		value.KindMacro: "macro", value.KindRef: "ref", value.KindBuffer: "buffer",
		value.KindMethod: "method", value.KindRecur: "recur",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}
