package program

import (
	"testing"

	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/snapshot"
	"github.com/hflisp/calcit/internal/value"
)

func leaf(s string) cirru.Node { return cirru.NewLeaf(s) }
func expr(ns ...cirru.Node) cirru.Node { return cirru.NewExpr(ns...) }

func TestExtractProgramDataParsesRequireAsAlias(t *testing.T) {
	nsForm := expr(leaf("ns"), leaf("app.main"),
		expr(leaf(":require"), expr(leaf("lib.x"), leaf(":as"), leaf("x"))))
	snap := &snapshot.Snapshot{
		Package: "app",
		Files: map[string]snapshot.File{
			"app.main": {
				Ns:   snapshot.CodeEntry{Code: nsForm},
				Defs: map[string]snapshot.CodeEntry{"main!": {Code: leaf("1")}},
			},
		},
	}

	prog := New()
	if warnings := ExtractProgramData(prog, snap); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	rule, ok := prog.ImportRuleFor("app.main", "x")
	if !ok || rule.Kind != ImportNsAs || rule.TargetNs != "lib.x" {
		t.Fatalf("expected NsAs(lib.x) under alias x, got %+v ok=%v", rule, ok)
	}
	if !prog.HasDef("app.main", "main!") {
		t.Fatal("expected main! to be loaded")
	}
}

func TestExtractProgramDataParsesReferDefs(t *testing.T) {
	nsForm := expr(leaf("ns"), leaf("app.main"),
		expr(leaf(":require"), expr(leaf("lib.x"), leaf(":refer"), expr(leaf("greet")))))
	snap := &snapshot.Snapshot{
		Files: map[string]snapshot.File{
			"app.main": {Ns: snapshot.CodeEntry{Code: nsForm}, Defs: map[string]snapshot.CodeEntry{}},
		},
	}

	prog := New()
	ExtractProgramData(prog, snap)
	rule, ok := prog.ImportRuleFor("app.main", "greet")
	if !ok || rule.Kind != ImportNsReferDef || rule.TargetNs != "lib.x" || rule.TargetDef != "greet" {
		t.Fatalf("expected NsReferDef(lib.x, greet), got %+v ok=%v", rule, ok)
	}
}

func TestApplyCodeChangesChangesAndRemovesDefs(t *testing.T) {
	prog := New()
	prog.LoadDef("app.main", "f", leaf("1"))
	prog.LoadDef("app.main", "g", leaf("2"))
	prog.WriteEvaled("app.main", "f", value.Number(1))

	changes := snapshot.ChangesDict{
		Changed: map[string]snapshot.FileChange{
			"app.main": {
				ChangedDefs: map[string]snapshot.CodeEntry{"f": {Code: leaf("3")}},
				RemovedDefs: map[string]bool{"g": true},
			},
		},
	}
	touched := ApplyCodeChanges(prog, changes)
	if len(touched) != 1 || touched[0] != "app.main" {
		t.Fatalf("expected app.main touched, got %v", touched)
	}
	if _, ok := prog.Evaled("app.main", "f"); ok {
		t.Fatal("expected changed def's evaluated entry to be cleared")
	}
	if prog.HasDef("app.main", "g") {
		t.Fatal("expected removed def to be dropped from the code table")
	}
	code, ok := prog.RawDef("app.main", "f")
	if !ok || !cirru.Equal(code, leaf("3")) {
		t.Fatalf("expected f's code updated to the new value, got %+v", code)
	}
}
