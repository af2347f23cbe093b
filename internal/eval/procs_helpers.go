package eval

import (
	"fmt"

	"github.com/hflisp/calcit/internal/value"
)

func checkArity(args []value.Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d", n, len(args))
	}
	return nil
}

func arity2(args []value.Value) bool { return len(args) == 2 }

func asNumber(args []value.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	n, ok := args[i].(value.Number)
	if !ok {
		return 0, fmt.Errorf("argument %d must be a number, got kind %d", i, args[i].Kind())
	}
	return float64(n), nil
}

func asString(v value.Value) (string, error) {
	s, ok := v.(value.Str)
	if !ok {
		return "", fmt.Errorf("expected a string, got kind %d", v.Kind())
	}
	return string(s), nil
}

func asStringArg(args []value.Value, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	return asString(args[i])
}

func asList(args []value.Value, i int) (value.List, error) {
	if i >= len(args) {
		return value.List{}, fmt.Errorf("missing argument %d", i)
	}
	l, ok := args[i].(value.List)
	if !ok {
		return value.List{}, fmt.Errorf("argument %d must be a list, got kind %d", i, args[i].Kind())
	}
	return l, nil
}

func asMap(args []value.Value, i int) (value.Map, error) {
	if i >= len(args) {
		return value.Map{}, fmt.Errorf("missing argument %d", i)
	}
	m, ok := args[i].(value.Map)
	if !ok {
		return value.Map{}, fmt.Errorf("argument %d must be a map, got kind %d", i, args[i].Kind())
	}
	return m, nil
}

func asSet(args []value.Value, i int) (value.Set, error) {
	if i >= len(args) {
		return value.Set{}, fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(value.Set)
	if !ok {
		return value.Set{}, fmt.Errorf("argument %d must be a set, got kind %d", i, args[i].Kind())
	}
	return s, nil
}

func asRecord(args []value.Value, i int) (value.Record, error) {
	if i >= len(args) {
		return value.Record{}, fmt.Errorf("missing argument %d", i)
	}
	r, ok := args[i].(value.Record)
	if !ok {
		return value.Record{}, fmt.Errorf("argument %d must be a record, got kind %d", i, args[i].Kind())
	}
	return r, nil
}

func asTag(args []value.Value, i int) (value.Tag, error) {
	if i >= len(args) {
		return value.Tag{}, fmt.Errorf("missing argument %d", i)
	}
	t, ok := args[i].(value.Tag)
	if !ok {
		return value.Tag{}, fmt.Errorf("argument %d must be a tag, got kind %d", i, args[i].Kind())
	}
	return t, nil
}

func numFold(args []value.Value, identity float64, op func(a, b float64) float64) (value.Value, error) {
	acc := identity
	for i, a := range args {
		n, ok := a.(value.Number)
		if !ok {
			return nil, fmt.Errorf("argument %d must be a number, got kind %d", i, a.Kind())
		}
		acc = op(acc, float64(n))
	}
	return value.Number(acc), nil
}

func numSub(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("- expects at least 1 argument")
	}
	first, err := asNumber(args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return value.Number(-first), nil
	}
	acc := first
	for i := 1; i < len(args); i++ {
		n, err := asNumber(args, i)
		if err != nil {
			return nil, err
		}
		acc -= n
	}
	return value.Number(acc), nil
}

func numDiv(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("/ expects at least 1 argument")
	}
	first, err := asNumber(args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		if first == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return value.Number(1 / first), nil
	}
	acc := first
	for i := 1; i < len(args); i++ {
		n, err := asNumber(args, i)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		acc /= n
	}
	return value.Number(acc), nil
}

func numMod(args []value.Value, signed bool) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	a, err := asNumber(args, 0)
	if err != nil {
		return nil, err
	}
	b, err := asNumber(args, 1)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, fmt.Errorf("division by zero")
	}
	ai, bi := int64(a), int64(b)
	r := ai % bi
	if !signed && r != 0 && (r < 0) != (bi < 0) {
		r += bi
	}
	return value.Number(float64(r)), nil
}

func cmpBool(args []value.Value, test func(c int) bool) (value.Value, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("comparison expects at least 2 arguments")
	}
	for i := 1; i < len(args); i++ {
		if !test(value.Compare(args[i-1], args[i])) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func kindPredicate(args []value.Value, k value.Kind) (value.Value, error) {
	if err := checkArity(args, 1); err != nil {
		return nil, err
	}
	return value.Bool(args[0].Kind() == k), nil
}

func countOf(args []value.Value) (value.Value, error) {
	if err := checkArity(args, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case value.List:
		return value.Number(x.Count()), nil
	case value.Map:
		return value.Number(x.Count()), nil
	case value.Set:
		return value.Number(x.Count()), nil
	case value.Str:
		return value.Number(len([]rune(string(x)))), nil
	default:
		return nil, fmt.Errorf("count expects a collection or string, got kind %d", args[0].Kind())
	}
}

func clampRange(from, to, n int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from > to {
		from = to
	}
	return from, to
}

func procGet(args []value.Value) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	switch c := args[0].(type) {
	case value.Map:
		if v, ok := c.Get(args[1]); ok {
			return v, nil
		}
		return value.Nil{}, nil
	case value.List:
		n, ok := args[1].(value.Number)
		if !ok {
			return nil, fmt.Errorf("get on a list expects a number index")
		}
		if v, ok := c.Get(int(n)); ok {
			return v, nil
		}
		return value.Nil{}, nil
	case value.Record:
		tag, ok := args[1].(value.Tag)
		if !ok {
			return nil, fmt.Errorf("get on a record expects a tag")
		}
		if v, ok := c.Get(tag); ok {
			return v, nil
		}
		return value.Nil{}, nil
	default:
		return nil, fmt.Errorf("get expects a map, list, or record, got kind %d", args[0].Kind())
	}
}

func procAssoc(args []value.Value) (value.Value, error) {
	if err := checkArity(args, 3); err != nil {
		return nil, err
	}
	switch c := args[0].(type) {
	case value.Map:
		return c.Assoc(args[1], args[2]), nil
	case value.Record:
		tag, ok := args[1].(value.Tag)
		if !ok {
			return nil, fmt.Errorf("assoc on a record expects a tag")
		}
		updated, ok := c.Assoc(tag, args[2])
		if !ok {
			return nil, fmt.Errorf("record has no field %q", tag.Name())
		}
		return updated, nil
	default:
		return nil, fmt.Errorf("assoc expects a map or record, got kind %d", args[0].Kind())
	}
}

func procContains(args []value.Value) (value.Value, error) {
	if err := checkArity(args, 2); err != nil {
		return nil, err
	}
	switch c := args[0].(type) {
	case value.Map:
		_, ok := c.Get(args[1])
		return value.Bool(ok), nil
	case value.Set:
		return value.Bool(c.Contains(args[1])), nil
	default:
		return nil, fmt.Errorf("contains? expects a map or set, got kind %d", args[0].Kind())
	}
}

func procNewRecord(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args)%2 != 1 {
		return nil, fmt.Errorf("new-record expects a name tag plus field/value pairs")
	}
	name, ok := args[0].(value.Tag)
	if !ok {
		return nil, fmt.Errorf("new-record first argument must be a tag")
	}
	var fields []value.Tag
	var values []value.Value
	for i := 1; i < len(args); i += 2 {
		tag, ok := args[i].(value.Tag)
		if !ok {
			return nil, fmt.Errorf("new-record field name must be a tag")
		}
		fields = append(fields, tag)
		values = append(values, args[i+1])
	}
	structRef := value.NewStructRef(name, fields)
	ordered := make([]value.Value, len(structRef.Fields))
	for i, f := range structRef.Fields {
		for j, orig := range fields {
			if orig.ID() == f.ID() {
				ordered[i] = values[j]
			}
		}
	}
	return value.Record{Struct: structRef, Values: ordered}, nil
}

func printArgs(args []value.Value, toStderr bool) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.Display(a)
	}
	line := joinSpace(parts)
	if toStderr {
		fmt.Fprintln(stderrWriter, line)
		return
	}
	fmt.Fprintln(stdoutWriter, line)
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
