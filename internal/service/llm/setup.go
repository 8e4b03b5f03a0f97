package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"storyloom/internal/capabilities"
	"storyloom/internal/config"
	domainllm "storyloom/internal/domain/services/llm"
)

// SetupCompletion wires the provider factory, registry and capability limits
// into a CompletionService.
func SetupCompletion(cfg *config.Config, caps *capabilities.Registry, logger *slog.Logger) (domainllm.CompletionService, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg))
	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	// DEFAULT_PROVIDER qualifies a bare DEFAULT_MODEL
	defaultModel := cfg.DefaultModel
	if cfg.DefaultProvider != "" && !strings.Contains(defaultModel, "/") {
		defaultModel = cfg.DefaultProvider + "/" + defaultModel
	}

	info, err := ParseModel(defaultModel)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_MODEL: %w", err)
	}

	// Log available providers based on config
	if cfg.AnthropicAPIKey != "" {
		logger.Info("provider available", "name", "anthropic", "models", "claude-*")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set - Anthropic provider not available")
		if info.Provider == "anthropic" {
			logger.Warn("default model needs the Anthropic provider; completions will fail", "model", defaultModel)
		}
	}
	logger.Info("provider available", "name", "lorem", "models", "lorem-*")

	logger.Info("completion service initialized",
		"default_model", defaultModel,
		"timeout", cfg.CompletionTimeout,
		"max_tokens", cfg.CompletionMaxTokens,
	)

	return NewCompletionService(registry, caps, CompletionConfig{
		DefaultModel: defaultModel,
		MaxTokens:    cfg.CompletionMaxTokens,
		Timeout:      cfg.CompletionTimeout,
	}, logger), nil
}
