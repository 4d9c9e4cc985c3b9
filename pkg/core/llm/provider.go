package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// StaticProvider replays a fixed reply. Used for offline runs and tests.
type StaticProvider struct {
	Reply string
	Err   error
}

func (p *StaticProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Reply, p.Err
}

func (p *StaticProvider) AdaptInstructions(raw string) string {
	return raw
}
