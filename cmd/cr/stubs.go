package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// query, edit, and tree are the interactive-tooling surfaces spec.md §1
// explicitly scopes out of this core (structural querying/editing of
// Cirru source, and rendering the Cirru parse tree directly): they belong
// to an editor or REPL built on top of internal/cirru and internal/snapshot,
// not to the evaluation core these commands front. Kept as stubs so
// `cr --help` documents the full surface spec.md §1 describes, rather than
// silently omitting commands a reader would expect to find.
func outOfScope(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("(out of scope) %s is not implemented by this core", name),
		RunE: func(_ *cobra.Command, _ []string) error {
			return fmt.Errorf("%q is outside this core's scope (spec.md §1): it belongs to an editor/tooling layer built on internal/cirru and internal/snapshot, not to evaluation", name)
		},
	}
}

func init() {
	rootCmd.AddCommand(outOfScope("query"))
	rootCmd.AddCommand(outOfScope("edit"))
	rootCmd.AddCommand(outOfScope("tree"))
}
