package capabilities

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Providers with an embedded model list.
var knownProviders = []string{"groq", "openrouter", "lorem"}

// Registry holds the embedded model lists and generation prompts.
type Registry struct {
	providers map[string]*ProviderModels
	prompts   Prompts
	mu        sync.RWMutex
}

// NewRegistry loads the embedded YAML files.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		providers: make(map[string]*ProviderModels),
	}

	for _, provider := range knownProviders {
		if err := r.loadProviderFile(provider); err != nil {
			return nil, fmt.Errorf("failed to load %s models: %w", provider, err)
		}
	}

	data, err := configFiles.ReadFile("config/prompts.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts: %w", err)
	}
	if err := yaml.Unmarshal(data, &r.prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	r.prompts.SystemInstruction = strings.TrimSpace(r.prompts.SystemInstruction)
	if r.prompts.SystemInstruction == "" {
		return nil, fmt.Errorf("prompts.yaml: system_instruction is empty")
	}

	return r, nil
}

func (r *Registry) loadProviderFile(provider string) error {
	filename := fmt.Sprintf("config/%s.yaml", provider)
	data, err := configFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var models ProviderModels
	if err := yaml.Unmarshal(data, &models); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	r.mu.Lock()
	r.providers[provider] = &models
	r.mu.Unlock()

	return nil
}

// SystemInstruction returns the Terraform architect prompt.
func (r *Registry) SystemInstruction() string {
	return r.prompts.SystemInstruction
}

// Starters returns the starter prompts in file order.
func (r *Registry) Starters() []Starter {
	out := make([]Starter, len(r.prompts.Starters))
	copy(out, r.prompts.Starters)
	return out
}

// GetModel returns a model of a provider.
func (r *Registry) GetModel(provider, model string) (*ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	for i := range p.Models {
		if p.Models[i].ID == model {
			m := p.Models[i]
			return &m, nil
		}
	}
	return nil, fmt.Errorf("unknown model %s for provider %s", model, provider)
}

// ListProviderModels returns all models for a provider (ordered as defined in YAML)
func (r *Registry) ListProviderModels(provider string) ([]ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	out := make([]ModelInfo, len(p.Models))
	copy(out, p.Models)
	return out, nil
}
