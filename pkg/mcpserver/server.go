// Package mcpserver exposes the core's run_program entry over MCP (spec.md
// §1: the MCP/JSON-RPC server is an "external collaborator" whose only
// contract with the core is a small surface for running a program entry,
// §4.1). Adapted from the teacher's pkg/mcp.Server: same
// mark3labs/mcp-go wiring and stdio/SSE transport split, one tool instead
// of codeloom's indexing/search surface.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hflisp/calcit/internal/driver"
	"github.com/hflisp/calcit/internal/value"
)

// Server wraps a driver.Driver behind an MCP tool surface.
type Server struct {
	drv *driver.Driver
	mcp *server.MCPServer
	mu  sync.RWMutex
}

type Config struct {
	Driver *driver.Driver
}

func NewServer(cfg Config) *Server {
	s := &Server{drv: cfg.Driver}

	mcpServer := server.NewMCPServer(
		"calcit",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.mcp = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.Tool{
		Name: "run-program",
		Description: `Run a calcit program entry (namespace + def) with a vector of arguments.

PURPOSE: Evaluate a preprocessed entry function in the currently loaded
snapshot and return its result. Fails if preprocessing the entry produced
any resolver warning — the same "unexpected warnings" policy the CLI's
run command uses.

Example: {"ns": "app.main", "def": "main!", "args": []}`,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ns": map[string]interface{}{
					"type":        "string",
					"description": "Entry namespace, e.g. \"app.main\"",
				},
				"def": map[string]interface{}{
					"type":        "string",
					"description": "Entry def name within the namespace, e.g. \"main!\"",
				},
				"args": map[string]interface{}{
					"type":        "array",
					"description": "Arguments passed to the entry, as JSON values (string/number/bool/null only)",
				},
			},
			Required: []string{"ns", "def"},
		},
	}, s.handleRunProgram)
}

func (s *Server) handleRunProgram(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ns, _ := request.Params.Arguments["ns"].(string)
	def, _ := request.Params.Arguments["def"].(string)
	if ns == "" || def == "" {
		return errorResult("both \"ns\" and \"def\" are required")
	}

	var args []value.Value
	if raw, ok := request.Params.Arguments["args"].([]interface{}); ok {
		for _, a := range raw {
			args = append(args, jsonToValue(a))
		}
	}

	s.mu.RLock()
	drv := s.drv
	s.mu.RUnlock()

	result, err := drv.RunProgram(ns, def, args)
	if err != nil {
		return errorResult(driver.Display(err))
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"success": true,
		"result":  value.Display(result),
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(jsonBytes)}},
	}, nil
}

// jsonToValue lifts a decoded JSON argument into the minimal Value shapes a
// tool caller can usefully pass: strings, numbers, bools, and nil. Compound
// JSON is rejected upstream of the core's own compound literals (vectors,
// maps) — MCP tool callers pass scalars, not calcit data structures.
func jsonToValue(v interface{}) value.Value {
	switch x := v.(type) {
	case string:
		return value.Str(x)
	case float64:
		return value.Number(x)
	case bool:
		return value.Bool(x)
	default:
		return value.Nil{}
	}
}

func errorResult(msg string) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(map[string]interface{}{"error": true, "message": msg})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(jsonBytes)}},
	}, nil
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	log.Println("mcpserver: starting on stdio")
	return server.ServeStdio(s.mcp)
}

// ServeSSE runs the MCP server over HTTP using SSE framing, the transport
// the teacher's NewSSEServer wires on top of net/http.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("mcpserver: starting (SSE) on http://localhost%s\n", addr)

	sseHandler := server.NewSSEServer(s.mcp,
		server.WithBaseURL(fmt.Sprintf("http://127.0.0.1:%d", port)),
	)

	mux := http.NewServeMux()
	mux.Handle("/", sseHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
