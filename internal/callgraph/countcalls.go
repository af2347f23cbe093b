package callgraph

import (
	"fmt"

	"github.com/hflisp/calcit/internal/eval"
	"github.com/hflisp/calcit/internal/resolver"
)

// CountCalls is the "count-calls" sibling of Analyze (spec.md §4.8 last
// paragraph): instead of a tree it walks the same reachable set and
// returns a multiset of how many times each def is referenced while
// walking. A caller's references are collected once per distinct callee,
// so a def that names the same callee several times adds one to that
// callee's count, not one per occurrence.
func CountCalls(ev *eval.Evaluator, entryNs, entryDef string, opts Options) (map[string]int, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	c := &counter{
		ev:          ev,
		maxDepth:    maxDepth,
		includeCore: opts.IncludeCore,
		expanded:    map[string]bool{},
		counts:      map[string]int{},
	}
	if err := c.walk(entryNs, entryDef, map[string]bool{}, 0); err != nil {
		return nil, err
	}
	return c.counts, nil
}

type counter struct {
	ev          *eval.Evaluator
	maxDepth    int
	includeCore bool

	expanded map[string]bool
	counts   map[string]int
}

func (c *counter) walk(ns, def string, inPath map[string]bool, depth int) error {
	fqn := ns + "/" + def
	c.counts[fqn]++

	if depth > c.maxDepth || inPath[fqn] {
		return nil
	}
	if ns == resolver.CoreNs && !c.includeCore {
		return nil
	}
	if c.expanded[fqn] {
		return nil
	}
	c.expanded[fqn] = true

	evaled, _, err := c.ev.PreprocessNsDef(ns, def)
	if err != nil {
		return fmt.Errorf("callgraph: preprocessing %s: %w", fqn, err)
	}

	childPath := make(map[string]bool, len(inPath)+1)
	for k := range inPath {
		childPath[k] = true
	}
	childPath[fqn] = true

	for _, ref := range collectRefs(evaled) {
		if ref.Ns == ns && ref.Def == def {
			continue
		}
		if err := c.walk(ref.Ns, ref.Def, childPath, depth+1); err != nil {
			return err
		}
	}
	return nil
}
