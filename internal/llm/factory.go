package llm

import (
	"fmt"
	"strings"
)

// providerForModel is the static capability table mapping model-name
// prefixes to provider names. Selection happens once at startup; there
// is no runtime probing for installed backends.
var providerForModel = []struct {
	prefix   string
	provider string
}{
	{"gpt-", "openai"},
	{"o1", "openai"},
	{"o3", "openai"},
	{"claude-", "anthropic"},
	{"llama", "ollama"},
	{"mistral", "ollama"},
	{"qwen", "ollama"},
}

// NewProvider creates an LLM provider from configuration. When no
// provider is named explicitly, the capability table resolves one from
// the model name.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)
	if provider == "" {
		provider = ResolveProvider(config.Model)
		if provider == "" {
			return nil, fmt.Errorf("no LLM provider configured and model %q does not map to one (supported: openai, anthropic, ollama)", config.Model)
		}
	}

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ResolveProvider maps a model name to a provider name via the capability
// table; unknown models resolve to empty.
func ResolveProvider(modelName string) string {
	lower := strings.ToLower(modelName)
	for _, entry := range providerForModel {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.provider
		}
	}
	return ""
}
