package eval

import (
	"fmt"

	"github.com/hflisp/calcit/internal/value"
)

// procMapList/procFilterList/procEach/procFoldl/procApply are the handful
// of procs that need a callback into the evaluator's own Apply logic
// (spec.md §4.6 Design Notes).
func (ev *Evaluator) procMapList(args []value.Value, stack []Frame) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	l, ok := args[1].(value.List)
	if !ok {
		return nil, fmt.Errorf("map expects a list as its second argument")
	}
	out := make([]value.Value, 0, l.Count())
	var callErr error
	l.Each(func(_ int, v value.Value) {
		if callErr != nil {
			return
		}
		r, err := ev.ApplyValue(args[0], []value.Value{v}, stack)
		if err != nil {
			callErr = err
			return
		}
		out = append(out, r)
	})
	if callErr != nil {
		return nil, callErr
	}
	return value.NewList(out...), nil
}

func (ev *Evaluator) procFilterList(args []value.Value, stack []Frame) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	l, ok := args[1].(value.List)
	if !ok {
		return nil, fmt.Errorf("filter expects a list as its second argument")
	}
	var out []value.Value
	var callErr error
	l.Each(func(_ int, v value.Value) {
		if callErr != nil {
			return
		}
		r, err := ev.ApplyValue(args[0], []value.Value{v}, stack)
		if err != nil {
			callErr = err
			return
		}
		if isTruthy(r) {
			out = append(out, v)
		}
	})
	if callErr != nil {
		return nil, callErr
	}
	return value.NewList(out...), nil
}

func (ev *Evaluator) procEach(args []value.Value, stack []Frame) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	l, ok := args[1].(value.List)
	if !ok {
		return nil, fmt.Errorf("each expects a list as its second argument")
	}
	var callErr error
	l.Each(func(_ int, v value.Value) {
		if callErr != nil {
			return
		}
		_, err := ev.ApplyValue(args[0], []value.Value{v}, stack)
		if err != nil {
			callErr = err
		}
	})
	return value.Nil{}, callErr
}

func (ev *Evaluator) procFoldl(args []value.Value, stack []Frame) (value.Value, error) {
	if err := checkArity(args, 3); err != nil {
		return nil, err
	}
	l, ok := args[0].(value.List)
	if !ok {
		return nil, fmt.Errorf("foldl expects a list as its first argument")
	}
	acc := args[1]
	fn := args[2]
	var callErr error
	l.Each(func(_ int, v value.Value) {
		if callErr != nil {
			return
		}
		r, err := ev.ApplyValue(fn, []value.Value{acc, v}, stack)
		if err != nil {
			callErr = err
			return
		}
		acc = r
	})
	if callErr != nil {
		return nil, callErr
	}
	return acc, nil
}

func (ev *Evaluator) procApply(args []value.Value, stack []Frame) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	l, ok := args[1].(value.List)
	if !ok {
		return nil, fmt.Errorf("apply expects a list as its second argument")
	}
	return ev.ApplyValue(args[0], l.Slice(), stack)
}
