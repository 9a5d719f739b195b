package llm

import (
	"fmt"
	"net/http"

	"terraai/internal/config"
	domainllm "terraai/internal/domain/services/llm"
	"terraai/internal/service/llm/providers/groq"
	"terraai/internal/service/llm/providers/library"
)

// ProviderFactory creates provider instances from config.
type ProviderFactory struct {
	config *config.Config
	client *http.Client
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
		client: groq.NewHTTPClient(cfg.LLMHeaderTimeout),
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "groq" - OpenAI-compatible streaming endpoint (default)
//   - "openrouter" - via meridian-llm-go
//   - "lorem" - offline placeholder text, no API key required
func (f *ProviderFactory) GetProvider(providerName string) (domainllm.Provider, error) {
	switch providerName {
	case "groq":
		// The key is checked at stream start so a missing key surfaces
		// as a chat error rather than a boot failure.
		return groq.NewProvider(f.config.GroqAPIKey, f.config.GroqURL, f.client), nil

	case "openrouter":
		if f.config.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable not set")
		}
		adapter, err := library.NewOpenRouterAdapter(f.config.OpenRouterAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenRouter provider: %w", err)
		}
		return adapter, nil

	case "lorem":
		return library.NewLoremAdapter(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// DefaultModel returns the configured model for a provider.
func (f *ProviderFactory) DefaultModel(providerName string) string {
	switch providerName {
	case "groq":
		return f.config.GroqModel
	case "openrouter":
		return f.config.OpenRouterModel
	default:
		return "lorem-fast"
	}
}
