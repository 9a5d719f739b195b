package handler

import (
	"log/slog"
	"net/http"

	"terraai/internal/capabilities"
	"terraai/internal/httputil"
)

// ModelsHandler exposes the configured models and the prompt starters
type ModelsHandler struct {
	registry *capabilities.Registry
	provider string
	model    string
	logger   *slog.Logger
}

// NewModelsHandler creates the handler for the active provider and model.
func NewModelsHandler(registry *capabilities.Registry, provider, model string, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{
		registry: registry,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

type modelsResponse struct {
	Provider string                   `json:"provider"`
	Active   string                   `json:"active"`
	Models   []capabilities.ModelInfo `json:"models"`
}

// GetModels lists the active provider's models
// GET /api/models
func (h *ModelsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.registry.ListProviderModels(h.provider)
	if err != nil {
		h.logger.Warn("no model list for provider", "provider", h.provider, "error", err)
		models = []capabilities.ModelInfo{}
	}

	httputil.RespondJSON(w, http.StatusOK, modelsResponse{
		Provider: h.provider,
		Active:   h.model,
		Models:   models,
	})
}

// GetStarters returns the example prompts shown on an empty chat
// GET /api/starters
func (h *ModelsHandler) GetStarters(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.Starters())
}

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
