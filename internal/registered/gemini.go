package registered

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/hflisp/calcit/internal/config"
	"github.com/hflisp/calcit/internal/program"
	"github.com/hflisp/calcit/internal/value"
	googleoption "google.golang.org/api/option"
)

// GeminiProc builds the `(llm/gemini prompt [system])` proc.
// Grounded on the teacher's internal/llm/google.go Generate: a one-shot
// chat session with the system prompt folded into the first user turn,
// same as the teacher does when its own history sees a system message
// immediately before a user message.
func GeminiProc(cfg config.LLMConfig) (program.RegisteredProc, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini registered proc requires an API key (set GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(context.Background(), googleoption.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	return func(args []value.Value) (value.Value, error) {
		prompt, system, err := promptArgs(args)
		if err != nil {
			return nil, err
		}

		gm := client.GenerativeModel(model)
		gm.SetTemperature(temperature)
		if maxTokens > 0 {
			gm.SetMaxOutputTokens(int32(maxTokens))
		}

		content := prompt
		if system != "" {
			content = system + "\n\n" + prompt
		}

		resp, err := gm.GenerateContent(context.Background(), genai.Text(content))
		if err != nil {
			return nil, fmt.Errorf("gemini generate error: %w", err)
		}
		if len(resp.Candidates) == 0 {
			return nil, fmt.Errorf("gemini returned no candidates")
		}

		var out string
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
		return value.Str(out), nil
	}, nil
}
