package config

import (
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Transport != "sse" {
		t.Errorf("Expected default Transport 'sse', got '%s'", cfg.Server.Transport)
	}
	if cfg.Server.Port != 3003 {
		t.Errorf("Expected default Port 3003, got %d", cfg.Server.Port)
	}
	if cfg.Server.HTTPPath != "/mcp" {
		t.Errorf("Expected default HTTPPath '/mcp', got '%s'", cfg.Server.HTTPPath)
	}
	if cfg.Server.WatcherDebounceMs != 100 {
		t.Errorf("Expected default WatcherDebounceMs 100, got %d", cfg.Server.WatcherDebounceMs)
	}
	if cfg.LLM.Enabled {
		t.Error("Expected LLM disabled by default")
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	if warnings := Validate(cfg); len(warnings) > 0 {
		t.Errorf("expected no warnings for default config, got %v", warnings)
	}

	cfg.Server.WatcherDebounceMs = 5
	if !anyContains(Validate(cfg), "debounce") {
		t.Error("expected a warning for watcher debounce < 10ms")
	}

	cfg.Server.WatcherDebounceMs = 70000
	if !anyContains(Validate(cfg), "debounce") {
		t.Error("expected a warning for watcher debounce > 60000ms")
	}

	cfg.Server.WatcherDebounceMs = 100
	cfg.Server.Transport = "carrier-pigeon"
	if !anyContains(Validate(cfg), "transport") {
		t.Error("expected a warning for an unknown transport")
	}
}

func TestEnvOverrideWatcherDebounce(t *testing.T) {
	restore := setEnv(t, "CALCIT_WATCHER_DEBOUNCE_MS", "500")
	defer restore()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if cfg.Server.WatcherDebounceMs != 500 {
		t.Errorf("expected WatcherDebounceMs 500 from env, got %d", cfg.Server.WatcherDebounceMs)
	}
}

func TestEnvOverrideTransport(t *testing.T) {
	restore := setEnv(t, "CALCIT_TRANSPORT", "streamable-http")
	defer restore()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if cfg.Server.Transport != "streamable-http" {
		t.Errorf("expected Transport 'streamable-http' from env, got '%s'", cfg.Server.Transport)
	}
}

func TestEnvOverrideHTTPPath(t *testing.T) {
	restore := setEnv(t, "CALCIT_HTTP_PATH", "/custom")
	defer restore()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if cfg.Server.HTTPPath != "/custom" {
		t.Errorf("expected HTTPPath '/custom' from env, got '%s'", cfg.Server.HTTPPath)
	}
}

func TestEnvOverrideLLMProviderGatesAPIKey(t *testing.T) {
	restoreProvider := setEnv(t, "CALCIT_LLM_PROVIDER", "anthropic")
	defer restoreProvider()
	restoreKey := setEnv(t, "ANTHROPIC_API_KEY", "sk-test")
	defer restoreKey()
	restoreOpenAI := setEnv(t, "OPENAI_API_KEY", "should-not-apply")
	defer restoreOpenAI()

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("expected anthropic key applied, got '%s'", cfg.LLM.APIKey)
	}
}

func setEnv(t *testing.T, key, val string) func() {
	t.Helper()
	orig, had := os.LookupEnv(key)
	os.Setenv(key, val)
	return func() {
		if had {
			os.Setenv(key, orig)
		} else {
			os.Unsetenv(key)
		}
	}
}

func anyContains(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
