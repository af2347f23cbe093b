// Package snapshot implements the L3 snapshot loader (spec.md §4.2): typed
// deserialization of the EDN snapshot file, module resolution, and diffing
// between two snapshots into a ChangesDict for hot-reload.
package snapshot

import (
	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/edn"
)

// CodeEntry is one def or ns-form's source: a doc string and its Cirru
// code tree (spec.md §4.2, §6: `CodeEntry = {doc, code}`).
type CodeEntry struct {
	Doc  string
	Code cirru.Node
}

// Equal implements the structural-plus-doc equality spec.md §4.2's diff
// relies on ("Equality is structural on Cirru plus doc string").
func (c CodeEntry) Equal(o CodeEntry) bool {
	return c.Doc == o.Doc && cirru.Equal(c.Code, o.Code)
}

// File is one namespace's worth of code (glossary "File / namespace"):
// the ns-form plus every def in it.
type File struct {
	Ns   CodeEntry
	Defs map[string]CodeEntry
}

// Configs is the `:configs` or per-entry config record (spec.md §6).
type Configs struct {
	InitFn   string
	ReloadFn string
	Version  string
	Modules  []string
}

// Snapshot is the deserialized form of the whole `compact.cirru` document
// (spec.md §6): `{package, configs, entries, files, users?}`.
type Snapshot struct {
	Package string
	Configs Configs
	Entries map[string]Configs
	Files   map[string]File
}

func edn2Configs(v edn.Value) Configs {
	cfg := Configs{}
	if s, ok := v.Get("init-fn"); ok {
		cfg.InitFn = s.Symbol
		if cfg.InitFn == "" {
			cfg.InitFn = s.Str
		}
	}
	if s, ok := v.Get("reload-fn"); ok {
		cfg.ReloadFn = s.Symbol
		if cfg.ReloadFn == "" {
			cfg.ReloadFn = s.Str
		}
	}
	if s, ok := v.Get("version"); ok {
		cfg.Version = s.Str
	}
	if s, ok := v.Get("modules"); ok {
		for _, it := range s.Items {
			cfg.Modules = append(cfg.Modules, it.Str)
		}
	}
	return cfg
}
