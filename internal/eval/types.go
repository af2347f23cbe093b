// Package eval implements the L6 preprocessor and L7 evaluator together
// (spec.md §4.5, §4.6): they are mutually recursive (macro expansion during
// preprocessing runs user code through the evaluator; the evaluator lazily
// preprocesses defs it encounters as unresolved thunks) so this repo keeps
// them in one package rather than forcing an artificial split, the way a
// tree-walking interpreter's "eval" module commonly owns both concerns.
package eval

import (
	"fmt"
	"strings"

	"github.com/hflisp/calcit/internal/resolver"
	"github.com/hflisp/calcit/internal/value"
)

// FrameKind distinguishes the four callable kinds that can appear in a
// call stack frame (spec.md §4.6: "{ns, def, kind in {Fn, Macro, Syntax,
// Proc}, code, args}").
type FrameKind uint8

const (
	FrameFn FrameKind = iota
	FrameMacro
	FrameSyntax
	FrameProc
)

func (k FrameKind) String() string {
	switch k {
	case FrameFn:
		return "fn"
	case FrameMacro:
		return "macro"
	case FrameSyntax:
		return "syntax"
	case FrameProc:
		return "proc"
	default:
		return "?"
	}
}

// Frame is one call-stack entry (spec.md §4.6, §7).
type Frame struct {
	Ns, Def string
	Kind    FrameKind
	Name    string
	Args    []value.Value
}

// CalcitError is the core's one error type (spec.md §7): a message, the
// call stack at the point of failure (innermost last), any preprocessing
// warnings accumulated along the way, and an optional source location.
type CalcitError struct {
	Message  string
	Stack    []Frame
	Warnings []resolver.Warning
	Location *value.Location
}

func (e *CalcitError) Error() string { return e.Message }

func NewError(format string, args ...interface{}) *CalcitError {
	return &CalcitError{Message: fmt.Sprintf(format, args...)}
}

// WithFrame returns a copy of err with frame appended to its stack — called
// as each evaluator/apply level unwinds, building the trace bottom-up.
func (e *CalcitError) WithFrame(f Frame) *CalcitError {
	out := *e
	out.Stack = append(append([]Frame{}, e.Stack...), f)
	return &out
}

// Display renders the fatal-error output format spec.md §7/§9 describes:
// the message, then the stack top-down with each frame's ns/def, kind, and
// (truncated) args.
func (e *CalcitError) Display() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteByte('\n')
	for i := len(e.Stack) - 1; i >= 0; i-- {
		f := e.Stack[i]
		b.WriteString(fmt.Sprintf("  at %s/%s (%s %s)", f.Ns, f.Def, f.Kind, f.Name))
		for _, a := range f.Args {
			b.WriteByte(' ')
			b.WriteString(value.Truncate(value.Display(a), 40))
		}
		b.WriteByte('\n')
	}
	if e.Location != nil {
		b.WriteString(fmt.Sprintf("  at %s/%s %v\n", e.Location.Ns, e.Location.Def, e.Location.Coord))
	}
	return b.String()
}
