package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Display renders a Value the way the driver prints it in REPL output and
// in fatal-error stack frames (spec.md §9: "the driver prints the message,
// then the stack top-down with each frame's ns/def, kind, args (truncated)
// ... line-oriented and not machine-parseable"). This is not a reader
// round-trip format; CirruQuote/RawCode print with a marker prefix instead
// of re-emitting Cirru syntax.
func Display(v Value) string {
	var b strings.Builder
	writeDisplay(&b, v)
	return b.String()
}

func writeDisplay(b *strings.Builder, v Value) {
	if v == nil {
		b.WriteString("nil")
		return
	}
	switch x := v.(type) {
	case Nil:
		b.WriteString("nil")
	case Bool:
		if x {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(formatNumber(float64(x)))
	case Str:
		b.WriteByte('|')
		b.WriteString(string(x))
	case Tag:
		b.WriteByte(':')
		b.WriteString(x.Name())
	case Buffer:
		fmt.Fprintf(b, "(buffer %d bytes)", len(x))
	case Symbol:
		b.WriteString(x.Name)
	case List:
		b.WriteByte('(')
		first := true
		x.Each(func(_ int, item Value) {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			writeDisplay(b, item)
		})
		b.WriteByte(')')
	case Set:
		b.WriteString("#{")
		first := true
		x.Each(func(item Value) {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			writeDisplay(b, item)
		})
		b.WriteByte('}')
	case Map:
		b.WriteString("{")
		first := true
		x.Each(func(k, val Value) {
			if !first {
				b.WriteByte(' ')
			}
			first = false
			writeDisplay(b, k)
			b.WriteByte(' ')
			writeDisplay(b, val)
		})
		b.WriteByte('}')
	case Tuple:
		fmt.Fprintf(b, "(:: %s", x.Tag.Name())
		for _, e := range x.Extra {
			b.WriteByte(' ')
			writeDisplay(b, e)
		}
		b.WriteByte(')')
	case Record:
		fmt.Fprintf(b, "(%%{} %s", x.Struct.Name.Name())
		for i, f := range x.Struct.Fields {
			fmt.Fprintf(b, " (%s %s)", f.Name(), Display(x.Values[i]))
		}
		b.WriteByte(')')
	case *Fn:
		fmt.Fprintf(b, "(fn %s.%s#%d)", x.Ns, x.Name, x.Identity)
	case *Macro:
		fmt.Fprintf(b, "(macro %s.%s#%d)", x.Ns, x.Name, x.Identity)
	case Recur:
		b.WriteString("(recur ...)")
	case *Thunk:
		b.WriteString("(thunk)")
	case *Ref:
		fmt.Fprintf(b, "(ref %s)", x.Path())
	case CirruQuote:
		b.WriteString("(quote ...)")
	case RawCode:
		fmt.Fprintf(b, "(raw-code %s %q)", x.Kind, x.Text)
	case Method:
		b.WriteByte('.')
		b.WriteString(x.Name)
	case LocalRef:
		b.WriteString(x.Name)
	case DefRef:
		fmt.Fprintf(b, "%s/%s", x.Ns, x.Def)
	case ProcRef:
		b.WriteString(x.Name)
	case SyntaxRef:
		b.WriteString(x.Name)
	case RegisteredRef:
		fmt.Fprintf(b, "&%s", x.Alias)
	case RawRef:
		b.WriteString(x.Text)
	case AnyRef:
		fmt.Fprintf(b, "(any-ref %s)", x.Tag)
	default:
		fmt.Fprintf(b, "(unknown-kind %d)", v.Kind())
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && !(f == 0 && 1/f < 0) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Truncate shortens a display string to at most n runes, appending an
// ellipsis marker, for the fatal-error stack frame's "args (truncated)".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
