package callgraph

import (
	"sync"
	"testing"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/eval"
	"github.com/hflisp/calcit/internal/program"
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

func TestAnalyzeWalksChainOfCalls(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "c", `defn c () 1`)
	loadDef(t, prog, "app.main", "b", `defn b () (c)`)
	loadDef(t, prog, "app.main", "a", `defn a () (b)`)

	result, err := Analyze(eval.New(prog), "app.main", "a", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Root.Ns != "app.main" || result.Root.Def != "a" {
		t.Fatalf("unexpected root: %+v", result.Root)
	}
	if len(result.Root.Children) != 1 || result.Root.Children[0].Def != "b" {
		t.Fatalf("expected a -> b edge, got %+v", result.Root.Children)
	}
	b := result.Root.Children[0]
	if len(b.Children) != 1 || b.Children[0].Def != "c" {
		t.Fatalf("expected b -> c edge, got %+v", b.Children)
	}
	if result.Stats.Project < 3 {
		t.Fatalf("expected at least 3 project defs reachable, got %d", result.Stats.Project)
	}
}

func TestAnalyzeMarksMutualCycleCircular(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "ping", `defn ping () (pong)`)
	loadDef(t, prog, "app.main", "pong", `defn pong () (ping)`)

	result, err := Analyze(eval.New(prog), "app.main", "ping", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Stats.Circular == 0 {
		t.Fatalf("expected at least one circular edge, got stats %+v", result.Stats)
	}
}

func TestAnalyzeSkipsSelfRecursion(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "loop", `defn loop (n) (if (= n 0) 0 (loop (- n 1)))`)

	result, err := Analyze(eval.New(prog), "app.main", "loop", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Root.Children) != 0 {
		t.Fatalf("expected self-recursion to be skipped, got children %+v", result.Root.Children)
	}
	if result.Stats.Circular != 0 {
		t.Fatalf("self-recursion must not count as circular, got stats %+v", result.Stats)
	}
}

func TestCountCallsCountsPerReferenceOccurrence(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "shared", `defn shared () 1`)
	loadDef(t, prog, "app.main", "b", `defn b () (shared)`)
	loadDef(t, prog, "app.main", "a", `defn a () (do (shared) (b))`)

	counts, err := CountCalls(eval.New(prog), "app.main", "a", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts["app.main/a"] != 1 {
		t.Fatalf("expected entry counted once, got %d", counts["app.main/a"])
	}
	if counts["app.main/shared"] != 2 {
		t.Fatalf("expected shared referenced twice (direct + via b), got %d", counts["app.main/shared"])
	}
}

func TestAnalyzeReportsUnreachableProjectDefs(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "used", `defn used () 1`)
	loadDef(t, prog, "app.main", "entry", `defn entry () (used)`)
	loadDef(t, prog, "app.main", "dead", `defn dead () 2`)

	result, err := Analyze(eval.New(prog), "app.main", "entry", Options{
		ListUnreachable: true,
		AllNamespaces:   []string{"app.main"},
		AllDefsByNs:     map[string][]string{"app.main": {"used", "entry", "dead"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Unreachable) != 1 || result.Unreachable[0] != "app.main/dead" {
		t.Fatalf("expected only app.main/dead unreachable, got %v", result.Unreachable)
	}
}
