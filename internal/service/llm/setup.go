package llm

import (
	"fmt"
	"log/slog"

	"terraai/internal/capabilities"
	"terraai/internal/config"
)

// SetupGateway builds the configured provider and wraps it in a Gateway.
func SetupGateway(cfg *config.Config, caps *capabilities.Registry, logger *slog.Logger) (*Gateway, error) {
	factory := NewProviderFactory(cfg)

	provider, err := factory.GetProvider(cfg.LLMProvider)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	model := factory.DefaultModel(cfg.LLMProvider)
	if _, err := caps.GetModel(cfg.LLMProvider, model); err != nil {
		// Unlisted models are allowed; the list only feeds /api/models.
		logger.Warn("configured model not in capability list", "provider", cfg.LLMProvider, "model", model)
	}

	if cfg.LLMProvider == "groq" && cfg.GroqAPIKey == "" {
		logger.Warn("GROQ_API_KEY not set - generations will fail")
	}

	logger.Info("llm gateway initialized",
		"provider", provider.Name(),
		"model", model,
		"history_size", cfg.LLMHistorySize,
	)

	return NewGateway(provider, GatewayConfig{
		Model:       model,
		System:      caps.SystemInstruction(),
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		HistorySize: cfg.LLMHistorySize,
		Timeout:     cfg.LLMTimeout,
	}, logger), nil
}
