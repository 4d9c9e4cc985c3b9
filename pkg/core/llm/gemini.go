package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	APIKey string
	Model  string // e.g. "gemini-2.0-flash"
}

// NewGeminiProvider creates a provider for the given key and model.
// An empty model selects gemini-2.0-flash.
func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{APIKey: apiKey, Model: model}
}

var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request through the GenAI SDK.
// Recognized options: "model" (string), "temperature" (float64) and
// "response_format" ({"type": "json_object"}).
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if p.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	model := p.Model
	if model == "" {
		model = defaultGeminiModel
	}
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if val, ok := options["temperature"].(float64); ok {
		config.Temperature = genai.Ptr(float32(val))
	}

	if val, ok := options["response_format"].(map[string]interface{}); ok {
		if val["type"] == "json_object" {
			config.ResponseMIMEType = "application/json"
		}
	} else if strings.Contains(strings.ToLower(systemPrompt), "json") {
		config.ResponseMIMEType = "application/json"
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
