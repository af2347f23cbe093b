package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hflisp/calcit/internal/builtins"
	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/driver"
	"github.com/hflisp/calcit/internal/hotreload"
	"github.com/hflisp/calcit/internal/registered"
)

var watchExclude []string

var watchCmd = &cobra.Command{
	Use:   "watch <snapshot.cirru.edn>",
	Short: "Run an entry, then re-run it on every snapshot write",
	Long: `Watch loads the snapshot, runs --entry-ns/--entry-def once, then observes
the snapshot file for writes. Each debounced burst of writes reloads the
code table and re-runs the entry (spec.md §5's hot-reload loop).`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&entryNs, "entry-ns", "app.main", "entry namespace")
	watchCmd.Flags().StringVar(&entryDef, "entry-def", "main!", "entry def name")
	watchCmd.Flags().StringSliceVar(&watchExclude, "exclude", nil, "glob patterns of paths to ignore")
}

func runWatch(_ *cobra.Command, args []string) error {
	builtins.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := args[0]
	drv, err := driver.New(ctx, path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := registered.Setup(drv.Prog, cfg.LLM); err != nil {
		return fmt.Errorf("registering LLM provider: %w", err)
	}

	if result, err := drv.RunProgram(entryNs, entryDef, nil); err != nil {
		fmt.Print(driver.Display(err))
	} else {
		fmt.Println("result:", result)
	}

	w, err := hotreload.New(hotreload.Config{
		Driver:          drv,
		EntryNs:         entryNs,
		EntryDef:        entryDef,
		Paths:           []string{path},
		ExcludePatterns: watchExclude,
		DebounceMs:      cfg.Server.WatcherDebounceMs,
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	w.OnReload = func(touched []string, result interface{}, err error) {
		if err != nil {
			fmt.Printf("reload failed: %v\n", err)
			return
		}
		fmt.Printf("reloaded %v, result: %v\n", touched, result)
	}
	defer w.Stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", path)
	return w.Watch(ctx)
}
