package llm

import (
	"strings"
	"testing"
)

func TestResolveProvider(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o-mini", "openai"},
		{"GPT-4o", "openai"},
		{"o1-preview", "openai"},
		{"claude-3-5-haiku-20241022", "anthropic"},
		{"llama3.2", "ollama"},
		{"mistral-small", "ollama"},
		{"totally-unknown-model", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := ResolveProvider(tt.model)
		if got != tt.want {
			t.Errorf("ResolveProvider(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(Config{Provider: "hal9000"})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNewProvider_UnresolvableModelNamesModel(t *testing.T) {
	_, err := NewProvider(Config{Model: "totally-unknown-model"})
	if err == nil {
		t.Fatal("Expected error when no provider is configured and the model resolves to none")
	}
	if !strings.Contains(err.Error(), "totally-unknown-model") {
		t.Errorf("Expected the error to name the model, got %q", err.Error())
	}
}

func TestNewProvider_OpenAIRequiresKey(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("Expected error for missing OpenAI API key")
	}
}

func TestNewProvider_ResolvesFromModelName(t *testing.T) {
	provider, err := NewProvider(Config{Model: "llama3.2"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.Name() != "ollama" {
		t.Errorf("Expected ollama resolved from model name, got %s", provider.Name())
	}
}

func TestNewProvider_OllamaDefaults(t *testing.T) {
	provider, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.baseURL != "http://localhost:11434" {
		t.Errorf("Expected default base URL, got %s", provider.baseURL)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{})
	if err == nil {
		t.Fatal("Expected error for missing Anthropic API key")
	}
}
