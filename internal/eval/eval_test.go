package eval

import (
	"sync"
	"testing"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
)

var initNamesOnce sync.Once

func initNames() {
	initNamesOnce.Do(builtins.Init)
}

func loadDef(t *testing.T, prog *program.Program, ns, def, src string) {
	t.Helper()
	nodes, err := cirru.Parse(src)
	if err != nil {
		t.Fatalf("parse %s/%s: %v", ns, def, err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected exactly one top-level form for %s/%s, got %d", ns, def, len(nodes))
	}
	prog.LoadDef(ns, def, nodes[0])
}

// runMain preprocesses and applies a zero-argument entry fn, mirroring
// spec.md §4.1's run_program contract for these scenario tests.
func runMain(t *testing.T, prog *program.Program, ns, def string) (value.Value, error) {
	t.Helper()
	ev := New(prog)
	final, warnings, err := ev.PreprocessNsDef(ns, def)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		t.Fatalf("unexpected warnings preprocessing %s/%s: %v", ns, def, warnings)
	}
	fn, ok := final.(*value.Fn)
	if !ok {
		t.Fatalf("%s/%s did not preprocess to a Fn: %#v", ns, def, final)
	}
	return ev.ApplyFn(fn, nil, nil)
}

// S1 — if/arithmetic, spec.md §10.
func TestScenarioIfArithmetic(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "main!", `defn main! () (if (> 3 2) (+ 1 2) 0)`)

	result, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(value.Number)
	if !ok || n != 3 {
		t.Fatalf("expected 3, got %#v", result)
	}
}

// S2 — macro expansion leaves no trace of the macro, spec.md §10.
func TestScenarioMacroExpansion(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "m", `defmacro m (x) (quasiquote (+ (~ x) 1))`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (m 41)`)

	result, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(value.Number)
	if !ok || n != 42 {
		t.Fatalf("expected 42, got %#v", result)
	}
}

// S3 — tail recursion runs in O(1) Go stack depth via the Recur-restart
// loop, spec.md §10.
func TestScenarioTailRecursion(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "loop-n", `defn loop-n (n acc) (if (= n 0) acc (recur (- n 1) (+ acc 1)))`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (loop-n 100000 0)`)

	result, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(value.Number)
	if !ok || n != 100000 {
		t.Fatalf("expected 100000, got %#v", result)
	}
}

// S4 — defatom/reset! side effects and final value, spec.md §10. `a` is
// its own top-level def, as in the canonical scenario: defatom is not
// meant to be called from inside a function body.
func TestScenarioAtomResetBang(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "a", `defatom a 0`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (reset! a 5) (deref a)`)

	result, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(value.Number)
	if !ok || n != 5 {
		t.Fatalf("expected 5, got %#v", result)
	}
}

// Registered(alias) call path: a name registered via prog.RegisterProc
// resolves through RegisteredRef and dispatches to the injected Go proc,
// spec.md §3 "Registered(alias)". Uses a no-op echo proc to avoid any
// real network call.
func TestScenarioRegisteredProcCall(t *testing.T) {
	initNames()
	prog := program.New()
	prog.RegisterProc("llm/generate", func(args []value.Value) (value.Value, error) {
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, NewError("expected a string prompt")
		}
		return value.Str("echo: " + string(s)), nil
	})
	loadDef(t, prog, "app.main", "main!", `defn main! () (llm/generate "hi")`)

	result, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := result.(value.Str)
	if !ok || string(s) != "echo: hi" {
		t.Fatalf("expected %q, got %#v", "echo: hi", result)
	}
}

// S6 — hot-reload: clearing one def's evaluated entry and re-evaluating
// the entry picks up the new definition without disturbing others.
func TestScenarioHotReloadClearsSingleDef(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "f", `defn f () 1`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (f)`)

	first, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := first.(value.Number); !ok || n != 1 {
		t.Fatalf("expected 1, got %#v", first)
	}

	loadDef(t, prog, "app.main", "f", `defn f () 2`)
	prog.ClearDef("app.main", "f")
	prog.ClearDef("app.main", "main!")

	second, err := runMain(t, prog, "app.main", "main!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := second.(value.Number); !ok || n != 2 {
		t.Fatalf("expected 2, got %#v", second)
	}
}
