// Package config loads the embedder-facing configuration for this core's
// external collaborators (spec.md §6 "External collaborators"): which
// registered LLM provider backs `Registered(alias)` procs, where the
// graph-store cache lives, and how the MCP server and hot-reload watcher
// are configured. The core's own evaluation state takes none of this —
// Program is constructed directly by callers — so nothing here is read by
// internal/eval, internal/program, or internal/resolver.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	GraphStore GraphStoreConfig `toml:"graph_store"`
	Server     ServerConfig     `toml:"server"`
}

// LLMConfig backs the Anthropic/OpenAI/Gemini registered procs of
// internal/registered (spec.md §3 "Registered(alias)").
type LLMConfig struct {
	Enabled     bool    `toml:"enabled"`
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	TimeoutSecs int     `toml:"timeout_secs"`
}

// GraphStoreConfig backs pkg/graphstore's cache of internal/callgraph
// output, keyed by entry ns/def.
type GraphStoreConfig struct {
	Backend   string `toml:"backend"`
	URL       string `toml:"url"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// ServerConfig covers both the MCP server transport (pkg/mcpserver) and the
// hot-reload watcher's debounce window (internal/hotreload).
type ServerConfig struct {
	Transport         string `toml:"transport"` // "stdio", "sse", "streamable-http"
	Port              int    `toml:"port"`
	HTTPPath          string `toml:"http_path"`
	WatcherDebounceMs int    `toml:"watcher_debounce_ms"`
	ReloadTimeoutMs   int    `toml:"reload_timeout_ms"`
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else {
		locations := []string{
			".calcit/config.toml",
			filepath.Join(os.Getenv("HOME"), ".calcit/config.toml"),
			"/etc/calcit/config.toml",
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				if _, err := toml.DecodeFile(loc, cfg); err == nil {
					break
				}
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Enabled:     false,
			Provider:    "anthropic",
			Temperature: 0.1,
			MaxTokens:   4096,
			TimeoutSecs: 120,
		},
		GraphStore: GraphStoreConfig{
			Backend:   "surrealdb",
			URL:       "ws://localhost:3004",
			Namespace: "calcit",
			Database:  "callgraph",
			Username:  "root",
			Password:  "root",
		},
		Server: ServerConfig{
			Transport:         "sse",
			Port:              3003,
			HTTPPath:          "/mcp",
			WatcherDebounceMs: 100,
			ReloadTimeoutMs:   60000,
		},
	}
}

func Validate(cfg *Config) []string {
	var warnings []string

	if cfg.LLM.Enabled {
		if cfg.LLM.Provider == "" {
			warnings = append(warnings, "LLM provider is enabled but no provider specified")
		}
		if cfg.LLM.MaxTokens < 1 {
			warnings = append(warnings, "LLM MaxTokens must be at least 1")
		}
		if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
			warnings = append(warnings, "LLM Temperature must be between 0 and 2")
		}
		if cfg.LLM.TimeoutSecs < 1 {
			warnings = append(warnings, "LLM TimeoutSecs must be at least 1 second")
		}
		if cfg.LLM.TimeoutSecs > 600 {
			warnings = append(warnings, "LLM TimeoutSecs exceeds reasonable maximum (600 seconds)")
		}
	}

	if cfg.GraphStore.Backend == "surrealdb" {
		if cfg.GraphStore.URL == "" {
			warnings = append(warnings, "GraphStore URL cannot be empty")
		}
		if cfg.GraphStore.Namespace == "" {
			warnings = append(warnings, "GraphStore namespace cannot be empty")
		}
		if cfg.GraphStore.Database == "" {
			warnings = append(warnings, "GraphStore database cannot be empty")
		}
	}

	switch cfg.Server.Transport {
	case "stdio", "sse", "streamable-http":
	default:
		warnings = append(warnings, "Server transport must be one of stdio, sse, streamable-http")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		warnings = append(warnings, "Server port must be between 1 and 65535")
	}
	if cfg.Server.WatcherDebounceMs < 10 {
		warnings = append(warnings, "Watcher debounce must be at least 10ms")
	}
	if cfg.Server.WatcherDebounceMs > 60000 {
		warnings = append(warnings, "Watcher debounce exceeds reasonable maximum (60000ms)")
	}
	if cfg.Server.ReloadTimeoutMs < 1000 {
		warnings = append(warnings, "Reload timeout must be at least 1 second")
	}
	if cfg.Server.ReloadTimeoutMs > 300000 {
		warnings = append(warnings, "Reload timeout exceeds reasonable maximum (300 seconds)")
	}

	return warnings
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALCIT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("CALCIT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("CALCIT_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.LLM.Provider == "anthropic" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("CALCIT_MAX_TOKENS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = i
		}
	}

	if v := os.Getenv("CALCIT_SURREALDB_URL"); v != "" {
		cfg.GraphStore.URL = v
	}
	if v := os.Getenv("CALCIT_SURREALDB_NAMESPACE"); v != "" {
		cfg.GraphStore.Namespace = v
	}
	if v := os.Getenv("CALCIT_SURREALDB_DATABASE"); v != "" {
		cfg.GraphStore.Database = v
	}
	if v := os.Getenv("CALCIT_SURREALDB_USERNAME"); v != "" {
		cfg.GraphStore.Username = v
	}
	if v := os.Getenv("CALCIT_SURREALDB_PASSWORD"); v != "" {
		cfg.GraphStore.Password = v
	}

	if v := os.Getenv("CALCIT_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("CALCIT_HTTP_PATH"); v != "" {
		cfg.Server.HTTPPath = v
	}
	if v := os.Getenv("CALCIT_WATCHER_DEBOUNCE_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.WatcherDebounceMs = i
		}
	}
	if v := os.Getenv("CALCIT_RELOAD_TIMEOUT_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.ReloadTimeoutMs = i
		}
	}
}
