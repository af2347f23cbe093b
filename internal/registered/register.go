package registered

import (
	"fmt"

	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/program"
)

// Setup registers the one configured LLM provider twice: under its own
// alias (llm/anthropic, llm/openai or llm/gemini) and under "llm/generate",
// so calcit code can call either name (spec.md §3 "Registered(alias)").
// Providers other than the configured one are not registered.
func Setup(prog *program.Program, cfg config.LLMConfig) error {
	if !cfg.Enabled {
		return nil
	}

	var primary program.RegisteredProc
	switch cfg.Provider {
	case "anthropic":
		primary = AnthropicProc(cfg)
		prog.RegisterProc("llm/anthropic", primary)
	case "openai", "openai-compatible":
		primary = OpenAIProc(cfg)
		prog.RegisterProc("llm/openai", primary)
	case "gemini", "google":
		proc, err := GeminiProc(cfg)
		if err != nil {
			return err
		}
		primary = proc
		prog.RegisterProc("llm/gemini", primary)
	default:
		return fmt.Errorf("unknown registered LLM provider: %s", cfg.Provider)
	}

	prog.RegisterProc("llm/generate", primary)
	return nil
}
