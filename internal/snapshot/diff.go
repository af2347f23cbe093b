package snapshot

// ChangesDict is the diff between two snapshots (spec.md §4.2, glossary
// "Changes dict"): namespaces added wholesale, namespaces removed
// wholesale, and namespaces present in both but with per-def changes.
type ChangesDict struct {
	Added   map[string]File
	Removed map[string]bool
	Changed map[string]FileChange
}

// FileChange is one changed namespace's def-level diff.
type FileChange struct {
	NsForm      *CodeEntry // nil if the ns-form itself is unchanged
	AddedDefs   map[string]CodeEntry
	RemovedDefs map[string]bool
	ChangedDefs map[string]CodeEntry
}

// FindCompactChanges computes the diff old -> new, matching
// original_source's find_compact_changes: set difference on namespace
// names, then per-namespace def-name set difference plus CodeEntry
// equality (spec.md §4.2).
func FindCompactChanges(oldSnap, newSnap *Snapshot) ChangesDict {
	changes := ChangesDict{
		Added:   map[string]File{},
		Removed: map[string]bool{},
		Changed: map[string]FileChange{},
	}
	for ns, f := range newSnap.Files {
		old, existed := oldSnap.Files[ns]
		if !existed {
			changes.Added[ns] = f
			continue
		}
		fc := diffFile(old, f)
		if fc != nil {
			changes.Changed[ns] = *fc
		}
	}
	for ns := range oldSnap.Files {
		if _, stillPresent := newSnap.Files[ns]; !stillPresent {
			changes.Removed[ns] = true
		}
	}
	return changes
}

func diffFile(old, new File) *FileChange {
	fc := FileChange{
		AddedDefs:   map[string]CodeEntry{},
		RemovedDefs: map[string]bool{},
		ChangedDefs: map[string]CodeEntry{},
	}
	dirty := false
	if !old.Ns.Equal(new.Ns) {
		ns := new.Ns
		fc.NsForm = &ns
		dirty = true
	}
	for name, ce := range new.Defs {
		oldCe, existed := old.Defs[name]
		if !existed {
			fc.AddedDefs[name] = ce
			dirty = true
			continue
		}
		if !oldCe.Equal(ce) {
			fc.ChangedDefs[name] = ce
			dirty = true
		}
	}
	for name := range old.Defs {
		if _, stillPresent := new.Defs[name]; !stillPresent {
			fc.RemovedDefs[name] = true
			dirty = true
		}
	}
	if !dirty {
		return nil
	}
	return &fc
}

// ApplyTo mutates a Snapshot's Files in place per this ChangesDict. The
// hot-reload path does not call it: driver.Reload applies the changes to the
// program with program.ApplyCodeChanges and then swaps in the fresh snapshot.
func (c ChangesDict) ApplyTo(snap *Snapshot) {
	for ns, f := range c.Added {
		snap.Files[ns] = f
	}
	for ns := range c.Removed {
		delete(snap.Files, ns)
	}
	for ns, fc := range c.Changed {
		f, ok := snap.Files[ns]
		if !ok {
			f = File{Defs: map[string]CodeEntry{}}
		}
		if fc.NsForm != nil {
			f.Ns = *fc.NsForm
		}
		if f.Defs == nil {
			f.Defs = map[string]CodeEntry{}
		}
		for name, ce := range fc.AddedDefs {
			f.Defs[name] = ce
		}
		for name, ce := range fc.ChangedDefs {
			f.Defs[name] = ce
		}
		for name := range fc.RemovedDefs {
			delete(f.Defs, name)
		}
		snap.Files[ns] = f
	}
}
