package handler

import (
	"log/slog"
	"net/http"

	"storyloom/internal/capabilities"
	"storyloom/internal/config"
	"storyloom/internal/httputil"
)

// ModelsHandler handles HTTP requests for model capabilities
type ModelsHandler struct {
	config   *config.Config
	logger   *slog.Logger
	registry *capabilities.Registry
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(cfg *config.Config, logger *slog.Logger, registry *capabilities.Registry) *ModelsHandler {
	return &ModelsHandler{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
}

// ProviderResponse represents a provider with its models
type ProviderResponse struct {
	ID      string          `json:"id"`
	Default bool            `json:"default"`
	Models  []ModelResponse `json:"models"`
}

// ModelResponse represents a model's capabilities for the API response
type ModelResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	ContextWindow int    `json:"context_window"`
	MaxOutput     int    `json:"max_output"`
	Default       bool   `json:"default"`
}

// modelsResponse is the body of GET /api/models
type modelsResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// GetCapabilities returns the models of every usable provider.
// Anthropic is listed only when an API key is configured.
// GET /api/models
func (h *ModelsHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderResponse{}

	for _, id := range h.registry.GetAllProviders() {
		if id == "anthropic" && h.config.AnthropicAPIKey == "" {
			continue
		}

		models, err := h.registry.ListProviderModels(id)
		if err != nil {
			h.logger.Warn("failed to list provider models", "provider", id, "error", err)
			continue
		}

		providers = append(providers, h.convertProvider(id, models))
	}

	httputil.RespondJSON(w, http.StatusOK, modelsResponse{Providers: providers})
}

// convertProvider converts capability registry data to API response format
func (h *ModelsHandler) convertProvider(id string, models []capabilities.ModelCapabilities) ProviderResponse {
	isDefault := id == h.config.DefaultProvider

	modelResponses := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		modelResponses = append(modelResponses, ModelResponse{
			ID:            m.ID,
			DisplayName:   m.DisplayName,
			ContextWindow: m.ContextWindow,
			MaxOutput:     m.MaxOutput,
			Default:       isDefault && m.ID == h.config.DefaultModel,
		})
	}

	return ProviderResponse{
		ID:      id,
		Default: isDefault,
		Models:  modelResponses,
	}
}
