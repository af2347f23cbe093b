package program

import (
	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/snapshot"
)

// ExtractProgramData populates prog's code table from a loaded snapshot
// (spec.md §3: "Populated once by extract_program_data"): every def's raw
// Cirru code, plus the ns-form's import map parsed into ImportRule entries.
// Unparseable ns-forms are reported as warnings rather than failing the
// whole load, mirroring the resolver's own tolerance for unknown names.
func ExtractProgramData(prog *Program, snap *snapshot.Snapshot) []string {
	var warnings []string
	for ns, f := range snap.Files {
		for name, ce := range f.Defs {
			prog.LoadDef(ns, name, ce.Code)
		}
		rules, errs := parseNsForm(ns, f.Ns.Code)
		for name, rule := range rules {
			prog.LoadImportRule(ns, name, rule)
		}
		warnings = append(warnings, errs...)
	}
	return warnings
}

// ApplyCodeChanges incrementally updates prog's code table from a
// ChangesDict (spec.md §3 "incrementally updated by apply_code_changes"),
// and returns the namespaces touched so the caller can decide what to clear
// from the evaluated table (spec.md §5's hot-reload step).
func ApplyCodeChanges(prog *Program, changes snapshot.ChangesDict) []string {
	var touched []string

	for ns, f := range changes.Added {
		for name, ce := range f.Defs {
			prog.LoadDef(ns, name, ce.Code)
		}
		rules, _ := parseNsForm(ns, f.Ns.Code)
		for name, rule := range rules {
			prog.LoadImportRule(ns, name, rule)
		}
		touched = append(touched, ns)
	}

	for ns := range changes.Removed {
		prog.RemoveNs(ns)
		touched = append(touched, ns)
	}

	for ns, fc := range changes.Changed {
		if fc.NsForm != nil {
			rules, _ := parseNsForm(ns, fc.NsForm.Code)
			for name, rule := range rules {
				prog.LoadImportRule(ns, name, rule)
			}
		}
		for name, ce := range fc.AddedDefs {
			prog.LoadDef(ns, name, ce.Code)
		}
		for name, ce := range fc.ChangedDefs {
			prog.LoadDef(ns, name, ce.Code)
			prog.ClearDef(ns, name)
		}
		for name := range fc.RemovedDefs {
			prog.RemoveDef(ns, name)
		}
		touched = append(touched, ns)
	}

	return touched
}

// parseNsForm reads a `(ns name (:require [target :as alias]) ...)` form
// into import rules (spec.md §3's three ImportRule kinds, §10 scenario S5's
// `(:require [lib.x :refer [greet]])` shape). Tolerant of clauses it
// doesn't recognize — an embedder's own ns macros are passed through
// silently rather than erroring the whole load.
func parseNsForm(ns string, code cirru.Node) (map[string]ImportRule, []string) {
	rules := map[string]ImportRule{}
	if code.IsLeaf || len(code.Expr) == 0 {
		return rules, nil
	}
	var warnings []string
	for _, clause := range code.Expr[1:] {
		if clause.IsLeaf || len(clause.Expr) == 0 {
			continue
		}
		head := clause.Expr[0]
		if !head.IsLeaf || head.Leaf != ":require" {
			continue
		}
		for _, spec := range clause.Expr[1:] {
			if spec.IsLeaf || len(spec.Expr) == 0 {
				continue
			}
			targetNode := spec.Expr[0]
			if !targetNode.IsLeaf {
				warnings = append(warnings, "ns "+ns+": :require spec missing a target namespace leaf")
				continue
			}
			target := targetNode.Leaf
			parseRequireSpec(rules, target, spec.Expr[1:])
		}
	}
	return rules, warnings
}

// parseRequireSpec handles the `:as`/`:refer`/`:default` keyword pairs
// following a require target (spec.md §3's NsAs/NsReferDef/NsDefault).
func parseRequireSpec(rules map[string]ImportRule, target string, rest []cirru.Node) {
	for i := 0; i < len(rest); i++ {
		if !rest[i].IsLeaf {
			continue
		}
		switch rest[i].Leaf {
		case ":as":
			if i+1 < len(rest) && rest[i+1].IsLeaf {
				rules[rest[i+1].Leaf] = ImportRule{Kind: ImportNsAs, TargetNs: target}
				i++
			}
		case ":refer":
			if i+1 < len(rest) {
				for _, sym := range rest[i+1].Expr {
					if sym.IsLeaf {
						rules[sym.Leaf] = ImportRule{Kind: ImportNsReferDef, TargetNs: target, TargetDef: sym.Leaf}
					}
				}
				i++
			}
		case ":default":
			if i+1 < len(rest) && rest[i+1].IsLeaf {
				rules[rest[i+1].Leaf] = ImportRule{Kind: ImportNsDefault, TargetNs: target}
				i++
			}
		}
	}
}
