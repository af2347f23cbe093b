package driver

import (
	"strings"
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

func TestRunProgramReturnsEntryResult(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "main!", `defn main! () (+ 1 2)`)

	d := FromProgram(prog)
	result, err := d.RunProgram("app.main", "main!", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, ok := result.(value.Number)
	if !ok || n != 3 {
		t.Fatalf("expected 3, got %#v", result)
	}
}

func TestRunProgramFailsOnUnexpectedWarnings(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "main!", `defn main! () undefined-name`)

	d := FromProgram(prog)
	_, err := d.RunProgram("app.main", "main!", nil)
	if err == nil {
		t.Fatal("expected an unexpected-warnings error")
	}
	if _, ok := err.(*ErrUnexpectedWarnings); !ok {
		t.Fatalf("expected *ErrUnexpectedWarnings, got %T: %v", err, err)
	}
}

func TestRunProgramTolerantSurfacesWarningsWithoutFailing(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "ok", `defn ok () 1`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (if false undefined-name 1)`)

	d := FromProgram(prog)
	_, warnings, err := d.RunProgramTolerant("app.main", "main!", nil)
	if err != nil {
		t.Fatalf("unexpected hard error: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected at least one warning")
	}
}

func TestDisplayRendersStackTopDown(t *testing.T) {
	initNames()
	prog := program.New()
	loadDef(t, prog, "app.main", "inner", `defn inner () (raise "boom")`)
	loadDef(t, prog, "app.main", "main!", `defn main! () (inner)`)

	d := FromProgram(prog)
	_, err := d.RunProgram("app.main", "main!", nil)
	if err == nil {
		t.Fatal("expected an error from raise")
	}
	out := Display(err)
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected message to mention the raised value, got: %s", out)
	}
	if !strings.Contains(out, "inner") {
		t.Fatalf("expected stack to mention the inner frame, got: %s", out)
	}
}
