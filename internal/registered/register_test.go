package registered

import (
	"testing"

	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
)

func TestPromptArgsRequiresAtLeastOneArg(t *testing.T) {
	if _, _, err := promptArgs(nil); err == nil {
		t.Fatal("expected an error for zero arguments")
	}
}

func TestPromptArgsRejectsNonStringPrompt(t *testing.T) {
	if _, _, err := promptArgs([]value.Value{value.Number(1)}); err == nil {
		t.Fatal("expected an error for a non-string prompt")
	}
}

func TestPromptArgsParsesPromptAndSystem(t *testing.T) {
	prompt, system, err := promptArgs([]value.Value{value.Str("hi"), value.Str("be terse")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prompt != "hi" || system != "be terse" {
		t.Fatalf("expected (hi, be terse), got (%s, %s)", prompt, system)
	}
}

func TestSetupSkipsDisabledLLM(t *testing.T) {
	prog := program.New()
	if err := Setup(prog, config.LLMConfig{Enabled: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := prog.LookupRegistered("llm/generate"); ok {
		t.Fatal("expected no registered proc when LLM is disabled")
	}
}

func TestSetupRejectsUnknownProvider(t *testing.T) {
	prog := program.New()
	err := Setup(prog, config.LLMConfig{Enabled: true, Provider: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestSetupRejectsGeminiWithoutAPIKey(t *testing.T) {
	prog := program.New()
	err := Setup(prog, config.LLMConfig{Enabled: true, Provider: "gemini"})
	if err == nil {
		t.Fatal("expected an error when gemini has no API key")
	}
}

func TestSetupRegistersAnthropicUnderBothAliases(t *testing.T) {
	prog := program.New()
	if err := Setup(prog, config.LLMConfig{Enabled: true, Provider: "anthropic", Model: "claude-3-5-haiku-latest"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := prog.LookupRegistered("llm/anthropic"); !ok {
		t.Fatal("expected llm/anthropic to be registered")
	}
	if _, ok := prog.LookupRegistered("llm/generate"); !ok {
		t.Fatal("expected llm/generate to be registered")
	}
}
