package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStaticProvider(t *testing.T) {
	p := &StaticProvider{Reply: `{"company_name": "Helio"}`}
	got, err := p.GenerateResponse(context.Background(), "prompt", "system", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p.Reply {
		t.Errorf("expected %q, got %q", p.Reply, got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.GenerateResponse(ctx, "prompt", "system", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewGeminiProvider(t *testing.T) {
	if p := NewGeminiProvider("key", ""); p.Model != defaultGeminiModel {
		t.Errorf("expected default model, got %q", p.Model)
	}
	if p := NewGeminiProvider("key", "gemini-2.5-pro"); p.Model != "gemini-2.5-pro" {
		t.Errorf("expected explicit model, got %q", p.Model)
	}
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	p := NewGeminiProvider("", "")
	_, err := p.GenerateResponse(context.Background(), "prompt", "Return JSON", nil)
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("expected missing key error, got %v", err)
	}
}
