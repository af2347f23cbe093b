package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/driver"
	"github.com/hflisp/calcit/internal/registered"
	"github.com/hflisp/calcit/internal/value"
)

var (
	entryNs  string
	entryDef string
	tolerant bool
)

var runCmd = &cobra.Command{
	Use:   "run <snapshot.cirru.edn> [args...]",
	Short: "Preprocess and run one entry def",
	Long: `Run loads a snapshot, preprocesses --entry-ns/--entry-def, and calls it
with any trailing positional arguments (passed through as calcit strings).

Fails if preprocessing the entry produced a resolver warning unless --tolerant
is set, matching spec.md §4.1 step 2's "main run" policy.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&entryNs, "entry-ns", "app.main", "entry namespace")
	runCmd.Flags().StringVar(&entryDef, "entry-def", "main!", "entry def name")
	runCmd.Flags().BoolVar(&tolerant, "tolerant", false, "log resolver warnings instead of failing on them")
}

func runRun(_ *cobra.Command, args []string) error {
	builtins.Init()

	ctx := context.Background()
	drv, err := driver.New(ctx, args[0])
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := registered.Setup(drv.Prog, cfg.LLM); err != nil {
		return fmt.Errorf("registering LLM provider: %w", err)
	}

	callArgs := make([]value.Value, 0, len(args)-1)
	for _, a := range args[1:] {
		callArgs = append(callArgs, value.Str(a))
	}

	if tolerant {
		result, warnings, err := drv.RunProgramTolerant(entryNs, entryDef, callArgs)
		for _, w := range warnings {
			fmt.Printf("warning: %s/%s: %s\n", w.Ns, w.Def, w.Message)
		}
		if err != nil {
			fmt.Print(driver.Display(err))
			return fmt.Errorf("run failed")
		}
		fmt.Println(value.Display(result))
		return nil
	}

	result, err := drv.RunProgram(entryNs, entryDef, callArgs)
	if err != nil {
		fmt.Print(driver.Display(err))
		return fmt.Errorf("run failed")
	}
	fmt.Println(value.Display(result))
	return nil
}
