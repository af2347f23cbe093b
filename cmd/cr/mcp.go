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
	"github.com/hflisp/calcit/internal/registered"
	"github.com/hflisp/calcit/pkg/mcpserver"
)

var mcpTransport string
var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp <snapshot.cirru.edn>",
	Short: "Serve the snapshot's run-program tool over MCP",
	Long: `Mcp loads the snapshot and exposes a single run-program tool over the
Model Context Protocol (spec.md §1: the MCP server is an external
collaborator of the core, not part of it). Transport is stdio or sse.`,
	Args: cobra.ExactArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "stdio or sse")
	mcpCmd.Flags().IntVar(&mcpPort, "port", 0, "port for the sse transport (0: use config)")
}

func runMCP(_ *cobra.Command, args []string) error {
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

	srv := mcpserver.NewServer(mcpserver.Config{Driver: drv})

	switch mcpTransport {
	case "stdio":
		return srv.ServeStdio(ctx)
	case "sse":
		port := mcpPort
		if port == 0 {
			port = cfg.Server.Port
		}
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unsupported transport %q (this core serves stdio or sse only)", mcpTransport)
	}
}
