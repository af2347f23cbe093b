// Package registered wires the teacher's LLM provider clients into
// program.RegisteredProc, the embedder-injected proc slot spec.md §3 names
// "Registered(alias)". Calcit code calls these by alias, like any other
// callable head — `(llm/generate "prompt text")` — rather
// than through a host-side agent loop: the evaluator has no suspension
// points (spec.md §5), so every provider call here runs synchronously to
// completion using its own background context.
package registered

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
)

// anthropicClient adapts the teacher's llm.AnthropicProvider down to a
// single synchronous Generate call, since RegisteredProc carries no
// context and the core never streams (spec.md §5 "no async cancellation
// primitive").
type anthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float32
	maxTokens   int
}

func newAnthropicClient(cfg config.LLMConfig) *anthropicClient {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *anthropicClient) generate(system, prompt string) (string, error) {
	maxTokens := int64(c.maxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(maxTokens),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	}
	if system != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{anthropic.NewTextBlock(system)})
	}

	resp, err := c.client.Messages.New(context.Background(), params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion error: %w", err)
	}
	var out string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			out += block.Text
		}
	}
	return out, nil
}

// AnthropicProc builds the `(llm/anthropic prompt [system])`
// proc: args[0] is the user prompt (Str), an optional args[1] is a system
// prompt. Grounded on the teacher's internal/llm/anthropic.go Generate.
func AnthropicProc(cfg config.LLMConfig) program.RegisteredProc {
	client := newAnthropicClient(cfg)
	return func(args []value.Value) (value.Value, error) {
		prompt, system, err := promptArgs(args)
		if err != nil {
			return nil, err
		}
		text, err := client.generate(system, prompt)
		if err != nil {
			return nil, err
		}
		return value.Str(text), nil
	}
}

func promptArgs(args []value.Value) (prompt, system string, err error) {
	if len(args) < 1 {
		return "", "", fmt.Errorf("registered llm proc expects at least 1 argument (prompt)")
	}
	p, ok := args[0].(value.Str)
	if !ok {
		return "", "", fmt.Errorf("registered llm proc expects a string prompt, got kind %d", args[0].Kind())
	}
	if len(args) >= 2 {
		s, ok := args[1].(value.Str)
		if !ok {
			return "", "", fmt.Errorf("registered llm proc expects a string system prompt, got kind %d", args[1].Kind())
		}
		system = string(s)
	}
	return string(p), system, nil
}
