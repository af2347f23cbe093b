package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/callgraph"
	"github.com/hflisp/calcit/internal/driver"
	"github.com/hflisp/calcit/internal/eval"
)

var (
	graphMaxDepth        int
	graphIncludeCore     bool
	graphListUnreachable bool
	graphCountCalls      bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <snapshot.cirru.edn>",
	Short: "Print the reachability tree from one entry def",
	Long: `Graph preprocesses --entry-ns/--entry-def and walks the references it
reaches (spec.md §4.8), printing a tree plus aggregate stats. With
--count-calls it instead prints a per-def reference count.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&entryNs, "entry-ns", "app.main", "entry namespace")
	graphCmd.Flags().StringVar(&entryDef, "entry-def", "main!", "entry def name")
	graphCmd.Flags().IntVar(&graphMaxDepth, "max-depth", 0, "recursion depth budget (0: spec default of 50)")
	graphCmd.Flags().BoolVar(&graphIncludeCore, "include-core", false, "expand references into calcit.core instead of leaving them as leaves")
	graphCmd.Flags().BoolVar(&graphListUnreachable, "list-unreachable", false, "report loaded project defs the entry never reaches")
	graphCmd.Flags().BoolVar(&graphCountCalls, "count-calls", false, "print a reference multiset instead of a tree")
}

func runGraph(_ *cobra.Command, args []string) error {
	builtins.Init()

	ctx := context.Background()
	drv, err := driver.New(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	ev := eval.New(drv.Prog)

	opts := callgraph.Options{
		MaxDepth:        graphMaxDepth,
		IncludeCore:     graphIncludeCore,
		ListUnreachable: graphListUnreachable,
	}
	if graphListUnreachable {
		opts.AllNamespaces = drv.Prog.Namespaces()
		opts.AllDefsByNs = map[string][]string{}
		for _, ns := range opts.AllNamespaces {
			opts.AllDefsByNs[ns] = drv.Prog.DefsIn(ns)
		}
	}

	if graphCountCalls {
		counts, err := callgraph.CountCalls(ev, entryNs, entryDef, opts)
		if err != nil {
			return err
		}
		for fqn, n := range counts {
			fmt.Printf("%-40s %d\n", fqn, n)
		}
		return nil
	}

	result, err := callgraph.Analyze(ev, entryNs, entryDef, opts)
	if err != nil {
		return err
	}
	printNode(result.Root, 0)
	fmt.Printf("\nreachable=%d project=%d core=%d circular=%d max-depth=%d\n",
		result.Stats.Reachable, result.Stats.Project, result.Stats.Core, result.Stats.Circular, result.Stats.MaxDepth)
	if len(result.Unreachable) > 0 {
		fmt.Println("unreachable:", strings.Join(result.Unreachable, ", "))
	}
	return nil
}

func printNode(n *callgraph.Node, depth int) {
	if n == nil {
		return
	}
	marker := ""
	if n.Circular {
		marker = " (circular)"
	} else if n.Seen {
		marker = " (seen)"
	}
	fmt.Printf("%s%s/%s%s\n", strings.Repeat("  ", depth), n.Ns, n.Def, marker)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}
