// Package program holds the process-wide program tables (spec.md §3, §4,
// §9 "Global program tables"): code data, evaluated data, and the atom
// table, each guarded by its own reader-writer lock. spec.md §9 frames
// these as "a session object passed through evaluation rather than true
// globals" — Program is that session object; a driver owns one instance
// for its lifetime rather than relying on package-level state.
package program

import (
	"fmt"
	"sync"

	"github.com/hflisp/calcit/internal/cirru"
	"github.com/hflisp/calcit/internal/value"
)

// ImportRuleKind distinguishes the three ns-form import shapes (spec.md §3).
type ImportRuleKind uint8

const (
	ImportNsAs ImportRuleKind = iota
	ImportNsReferDef
	ImportNsDefault
)

type ImportRule struct {
	Kind      ImportRuleKind
	TargetNs  string
	TargetDef string // only for ImportNsReferDef
}

// NsCode is one namespace's code-table entry: its import map plus its raw
// (unpreprocessed) defs (spec.md §3: "ns -> { import-map: name -> ImportRule,
// defs: name -> Calcit }").
type NsCode struct {
	ImportMap map[string]ImportRule
	Defs      map[string]cirru.Node
}

// Program is the process-wide session object: the code table, the
// evaluated table, and the atom table.
type Program struct {
	codeMu sync.RWMutex
	code   map[string]*NsCode // ns -> NsCode

	evalMu sync.RWMutex
	evaled map[string]map[string]value.Value // ns -> def -> value (often *value.Thunk)

	refsMu sync.RWMutex
	refs   map[string]*value.Ref // "ns/name" -> Ref

	registeredMu sync.RWMutex
	registered   map[string]RegisteredProc // alias -> embedder-injected proc

	tasks sync.WaitGroup // outstanding user-spawned OS threads (spec.md §5)
}

// RegisteredProc is a proc injected at runtime by an embedder, addressed by
// alias (spec.md §3 "Registered(alias)"). Wiring concrete instances —
// the Anthropic/OpenAI/Gemini clients — is done by internal/registered's
// Setup, which cmd/cr calls, not by this package.
type RegisteredProc func(args []value.Value) (value.Value, error)

func New() *Program {
	return &Program{
		code:       map[string]*NsCode{},
		evaled:     map[string]map[string]value.Value{},
		refs:       map[string]*value.Ref{},
		registered: map[string]RegisteredProc{},
	}
}

// RegisterProc installs an embedder-provided proc under alias, for
// RegisteredRef resolution (spec.md §4.4 step 8).
func (p *Program) RegisterProc(alias string, fn RegisteredProc) {
	p.registeredMu.Lock()
	defer p.registeredMu.Unlock()
	p.registered[alias] = fn
}

func (p *Program) LookupRegistered(alias string) (RegisteredProc, bool) {
	p.registeredMu.RLock()
	defer p.registeredMu.RUnlock()
	fn, ok := p.registered[alias]
	return fn, ok
}

// EnsureNs returns the NsCode for ns, creating an empty one under the write
// lock if absent.
func (p *Program) EnsureNs(ns string) *NsCode {
	p.codeMu.Lock()
	defer p.codeMu.Unlock()
	nc, ok := p.code[ns]
	if !ok {
		nc = &NsCode{ImportMap: map[string]ImportRule{}, Defs: map[string]cirru.Node{}}
		p.code[ns] = nc
	}
	return nc
}

// LoadDef installs raw Cirru code for (ns, def) into the code table.
func (p *Program) LoadDef(ns, def string, code cirru.Node) {
	nc := p.EnsureNs(ns)
	p.codeMu.Lock()
	defer p.codeMu.Unlock()
	nc.Defs[def] = code
}

// LoadImportRule installs one import-map entry for ns.
func (p *Program) LoadImportRule(ns, name string, rule ImportRule) {
	nc := p.EnsureNs(ns)
	p.codeMu.Lock()
	defer p.codeMu.Unlock()
	nc.ImportMap[name] = rule
}

// RawDef returns the unpreprocessed Cirru code for (ns, def).
func (p *Program) RawDef(ns, def string) (cirru.Node, bool) {
	p.codeMu.RLock()
	defer p.codeMu.RUnlock()
	nc, ok := p.code[ns]
	if !ok {
		return cirru.Node{}, false
	}
	c, ok := nc.Defs[def]
	return c, ok
}

// ImportRuleFor looks up an import-map entry for (ns, name).
func (p *Program) ImportRuleFor(ns, name string) (ImportRule, bool) {
	p.codeMu.RLock()
	defer p.codeMu.RUnlock()
	nc, ok := p.code[ns]
	if !ok {
		return ImportRule{}, false
	}
	r, ok := nc.ImportMap[name]
	return r, ok
}

// HasDef reports whether (ns, def) exists in the code table at all
// (preprocessed or not) — used by the resolver's direct-ns-lookup steps.
func (p *Program) HasDef(ns, def string) bool {
	p.codeMu.RLock()
	defer p.codeMu.RUnlock()
	nc, ok := p.code[ns]
	if !ok {
		return false
	}
	_, ok = nc.Defs[def]
	return ok
}

// Evaled returns the evaluated-table entry for (ns, def), if any.
func (p *Program) Evaled(ns, def string) (value.Value, bool) {
	p.evalMu.RLock()
	defer p.evalMu.RUnlock()
	m, ok := p.evaled[ns]
	if !ok {
		return nil, false
	}
	v, ok := m[def]
	return v, ok
}

// ErrCircularPreprocess is returned by MarkInProgress when (ns, def) is
// already mid-preprocessing — spec.md §9's explicit InProgress marker,
// replacing the source's "store Nil as guard" trick.
var ErrCircularPreprocess = fmt.Errorf("program: circular preprocessing")

// MarkInProgress installs an InProgress thunk placeholder at (ns, def) if
// absent, detecting circular self-reference during preprocessing (spec.md
// §4.5 step 2, §9 Design Notes).
func (p *Program) MarkInProgress(ns, def string, code value.Value) (*value.Thunk, error) {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()
	m, ok := p.evaled[ns]
	if !ok {
		m = map[string]value.Value{}
		p.evaled[ns] = m
	}
	if existing, ok := m[def]; ok {
		if th, ok := existing.(*value.Thunk); ok && th.State == value.ThunkStateInProgress {
			return nil, fmt.Errorf("%w: %s/%s", ErrCircularPreprocess, ns, def)
		}
	}
	th := value.NewCodeThunk(code, value.Location{Ns: ns, Def: def})
	th.MarkInProgress()
	m[def] = th
	return th, nil
}

// WriteEvaled installs the final preprocessed/evaluated value at (ns, def),
// replacing any InProgress placeholder (spec.md §4.5 step 4).
func (p *Program) WriteEvaled(ns, def string, v value.Value) {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()
	m, ok := p.evaled[ns]
	if !ok {
		m = map[string]value.Value{}
		p.evaled[ns] = m
	}
	m[def] = v
}

// ClearEvaled drops evaluated-table entries for the given namespaces,
// used by hot-reload (spec.md §5 "clear_all_program_evaled_defs").
func (p *Program) ClearEvaled(namespaces ...string) {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()
	for _, ns := range namespaces {
		delete(p.evaled, ns)
	}
}

// ClearDef drops one evaluated-table entry, used when a single def changes
// under hot-reload without invalidating its whole namespace.
func (p *Program) ClearDef(ns, def string) {
	p.evalMu.Lock()
	defer p.evalMu.Unlock()
	if m, ok := p.evaled[ns]; ok {
		delete(m, def)
	}
}

// Ref returns (creating if absent) the atom at path, installing initial
// only on creation (spec.md §4.7 "defatom installs {value, watchers: {}}
// at a path if absent").
func (p *Program) Ref(path string, initial value.Value) (*value.Ref, bool) {
	p.refsMu.Lock()
	defer p.refsMu.Unlock()
	if r, ok := p.refs[path]; ok {
		return r, false
	}
	r := value.NewRef(path, initial)
	p.refs[path] = r
	return r, true
}

// LookupRef returns an existing atom without creating one.
func (p *Program) LookupRef(path string) (*value.Ref, bool) {
	p.refsMu.RLock()
	defer p.refsMu.RUnlock()
	r, ok := p.refs[path]
	return r, ok
}

// RemoveNs drops a namespace from both the code and evaluated tables
// (hot-reload's "removed" set, spec.md §4.2 ChangesDict.removed).
func (p *Program) RemoveNs(ns string) {
	p.codeMu.Lock()
	delete(p.code, ns)
	p.codeMu.Unlock()
	p.evalMu.Lock()
	delete(p.evaled, ns)
	p.evalMu.Unlock()
}

// RemoveDef drops one def from both the code and evaluated tables
// (hot-reload's per-namespace "removed-defs", spec.md §4.2).
func (p *Program) RemoveDef(ns, def string) {
	p.codeMu.Lock()
	if nc, ok := p.code[ns]; ok {
		delete(nc.Defs, def)
	}
	p.codeMu.Unlock()
	p.evalMu.Lock()
	if m, ok := p.evaled[ns]; ok {
		delete(m, def)
	}
	p.evalMu.Unlock()
}

// DefsIn lists every def name currently in ns's code table, used by
// unreachable-def reporting (internal/callgraph) and hot-reload bookkeeping.
func (p *Program) DefsIn(ns string) []string {
	p.codeMu.RLock()
	defer p.codeMu.RUnlock()
	nc, ok := p.code[ns]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(nc.Defs))
	for name := range nc.Defs {
		out = append(out, name)
	}
	return out
}

// TrackTaskAdd/TrackTaskRelease mirror spec.md §5's "track-task-add /
// track-task-release pair ... so an embedder can wait for outstanding
// thread work before exiting" — user code spawning an OS thread (e.g. via
// async-sleep or FFI) registers it here; WaitTasks blocks until every
// tracked task has released.
func (p *Program) TrackTaskAdd()     { p.tasks.Add(1) }
func (p *Program) TrackTaskRelease() { p.tasks.Done() }
func (p *Program) WaitTasks()        { p.tasks.Wait() }

// Namespaces returns every namespace name currently in the code table, used
// by the call graph analyzer and hot-reload diffing.
func (p *Program) Namespaces() []string {
	p.codeMu.RLock()
	defer p.codeMu.RUnlock()
	out := make([]string, 0, len(p.code))
	for ns := range p.code {
		out = append(out, ns)
	}
	return out
}
