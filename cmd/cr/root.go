// Command cr is the CLI entry point for this core: run a calcit entry,
// watch a snapshot for hot-reload, serve it over MCP, or inspect its call
// graph (spec.md §1 frames these ancillary surfaces as external
// collaborators layered over internal/driver). Cobra wiring is grounded on
// the pack's only real cobra-based CLI, CWBudde-go-dws's cmd/dwscript/cmd
// (rootCmd + AddCommand + RunE subcommands) — the teacher itself carries
// spf13/cobra in its go.mod but never imports it, reaching for bare flag
// and a hand-rolled stringFlag/intFlag pair instead, so this repo follows
// the pack's actual usage rather than the teacher's unused dependency.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cr",
	Short: "Run and inspect calcit programs",
	Long: `cr loads a calcit EDN snapshot and evaluates it.

calcit source is stored as Cirru (indentation S-expressions) and packaged
for this core as an EDN snapshot: a code table of namespaces, each with an
import map and a table of defs, keyed by ns then def name.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("cr version {{.Version}} (%s)\n", GitCommit))
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default: .calcit/config.toml)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := Execute(); err != nil {
		exitWithError("%v", err)
	}
}
