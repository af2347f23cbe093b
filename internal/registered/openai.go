package registered

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProc builds the `(llm/openai prompt [system])` proc.
// Grounded on the teacher's internal/llm/openai.go Generate, collapsed to
// one user/system pair since a registered proc carries no message history
// of its own.
func OpenAIProc(cfg config.LLMConfig) program.RegisteredProc {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.TimeoutSecs > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}
	}
	client := openai.NewClientWithConfig(clientCfg)
	model := cfg.Model

	return func(args []value.Value) (value.Value, error) {
		prompt, system, err := promptArgs(args)
		if err != nil {
			return nil, err
		}

		messages := []openai.ChatCompletionMessage{}
		if system != "" {
			messages = append(messages, openai.ChatCompletionMessage{Role: "system", Content: system})
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: "user", Content: prompt})

		resp, err := client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
			Model:       model,
			Messages:    messages,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("openai completion error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("openai completion returned no choices")
		}
		return value.Str(resp.Choices[0].Message.Content), nil
	}
}
