// Package driver implements spec.md §4.1's program entry: preprocess an
// entry def, fail on any warning, call it, and on error print the call
// stack top-down. It is the one piece every ancillary surface — the CLI,
// the MCP server — goes through to actually run calcit code; none of them
// re-derive resolution or evaluation themselves.
package driver

import (
	"context"
	"fmt"

	"github.com/kr/pretty"

	"github.com/hflisp/calcit/internal/eval"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/resolver"
	"github.com/hflisp/calcit/internal/snapshot"
	"github.com/hflisp/calcit/internal/value"
)

// Driver owns one Program for its lifetime (spec.md §9 "Drivers own the
// lifetime") and loads/reloads snapshots into it.
type Driver struct {
	Prog   *program.Program
	loader *snapshot.Loader
	path   string
	snap   *snapshot.Snapshot
}

// New builds a Driver around a freshly loaded snapshot at path.
func New(ctx context.Context, path string) (*Driver, error) {
	loader := snapshot.NewLoader()
	snap, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	prog := program.New()
	if warnings := program.ExtractProgramData(prog, snap); len(warnings) > 0 {
		return nil, fmt.Errorf("driver: loading %s: %v", path, warnings)
	}
	return &Driver{Prog: prog, loader: loader, path: path, snap: snap}, nil
}

// FromProgram wraps an already-populated Program without loading a
// snapshot from disk — used by embedders that build the code table
// themselves, and by tests.
func FromProgram(prog *program.Program) *Driver {
	return &Driver{Prog: prog}
}

// ErrUnexpectedWarnings is returned by RunProgram when preprocessing the
// entry produced warnings (spec.md §4.1 step 2: "this is the policy for
// main runs").
type ErrUnexpectedWarnings struct {
	Ns, Def  string
	Warnings []resolver.Warning
}

func (e *ErrUnexpectedWarnings) Error() string {
	return fmt.Sprintf("unexpected warnings preprocessing %s/%s: %d warning(s)", e.Ns, e.Def, len(e.Warnings))
}

// RunProgram implements spec.md §4.1's run_program(entry-ns, entry-def,
// args): preprocess, fail on any warning, fetch the Fn, call it with args
// in an empty scope, and on evaluation error return a *CalcitError whose
// Display() renders the call stack top-down.
func (d *Driver) RunProgram(entryNs, entryDef string, args []value.Value) (value.Value, error) {
	ev := eval.New(d.Prog)
	final, warnings, err := ev.PreprocessNsDef(entryNs, entryDef)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		return nil, &ErrUnexpectedWarnings{Ns: entryNs, Def: entryDef, Warnings: warnings}
	}
	fn, ok := final.(*value.Fn)
	if !ok {
		return nil, fmt.Errorf("driver: %s/%s did not preprocess to a function, got %# v", entryNs, entryDef, pretty.Formatter(final))
	}
	result, err := ev.ApplyFn(fn, args, nil)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RunProgramTolerant is the "tooling callers that tolerate warnings use a
// different entry" path spec.md §4.1 step 2 carves out: it still refuses to
// run on a hard preprocessing error, but does not reject on resolver
// warnings: it returns them alongside the result.
func (d *Driver) RunProgramTolerant(entryNs, entryDef string, args []value.Value) (value.Value, []resolver.Warning, error) {
	ev := eval.New(d.Prog)
	final, warnings, err := ev.PreprocessNsDef(entryNs, entryDef)
	if err != nil {
		return nil, warnings, err
	}
	fn, ok := final.(*value.Fn)
	if !ok {
		return nil, warnings, fmt.Errorf("driver: %s/%s did not preprocess to a function", entryNs, entryDef)
	}
	result, err := ev.ApplyFn(fn, args, nil)
	return result, warnings, err
}

// Reload re-reads the snapshot at the driver's path and applies the diff
// against the currently loaded one (spec.md §4.2's find_compact_changes,
// §5's hot-reload loop). Returns the namespaces touched.
func (d *Driver) Reload(ctx context.Context) ([]string, error) {
	fresh, err := d.loader.Load(ctx, d.path)
	if err != nil {
		return nil, err
	}
	changes := snapshot.FindCompactChanges(d.snap, fresh)
	touched := program.ApplyCodeChanges(d.Prog, changes)
	d.snap = fresh
	return touched, nil
}

// Display renders a run error the way spec.md §4.1 step 4 and §7 describe:
// message, then call stack top-down. Non-CalcitError errors print as-is.
func Display(err error) string {
	if ce, ok := err.(*eval.CalcitError); ok {
		return ce.Display()
	}
	return err.Error() + "\n"
}
