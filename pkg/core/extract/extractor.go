// Package extract turns free-text offering descriptions into IPOAssumptions
// through an LLM provider. The model call itself is delegated; this package
// owns the prompt contract and the lenient decoding of the reply.
package extract

import (
	"context"
	"fmt"
	"time"

	"ipo_valuation/pkg/core/instrument"
	"ipo_valuation/pkg/core/llm"
)

// Extractor produces structured assumptions from a natural-language description
type Extractor interface {
	Extract(ctx context.Context, text string) (*instrument.IPOAssumptions, error)
}

// LLMExtractor asks a provider for IPOAssumptions-shaped JSON
type LLMExtractor struct {
	Provider llm.Provider
	Timeout  time.Duration
	Options  map[string]interface{}
}

// NewLLMExtractor creates an extractor with a 120s model timeout
func NewLLMExtractor(p llm.Provider) *LLMExtractor {
	return &LLMExtractor{
		Provider: p,
		Timeout:  120 * time.Second,
		Options:  map[string]interface{}{"temperature": 0.0},
	}
}

var _ Extractor = (*LLMExtractor)(nil)

func (e *LLMExtractor) Extract(ctx context.Context, text string) (*instrument.IPOAssumptions, error) {
	if e.Provider == nil {
		return nil, fmt.Errorf("extractor has no LLM provider")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	system := e.Provider.AdaptInstructions(SystemPrompt)
	reply, err := e.Provider.GenerateResponse(ctx, UserPrompt(text), system, e.Options)
	if err != nil {
		return nil, fmt.Errorf("assumption extraction failed: %w", err)
	}

	return ParseAssumptions(reply)
}
