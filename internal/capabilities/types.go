package capabilities

import "gopkg.in/yaml.v3"

// ModelInfo describes one generation model offered by a provider.
type ModelInfo struct {
	// Model identifier (set during YAML unmarshaling)
	ID       string `yaml:"-" json:"id"`
	Provider string `yaml:"-" json:"provider"`

	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`

	ContextWindow int `yaml:"context_window" json:"context_window"`
	MaxOutput     int `yaml:"max_output" json:"max_output"`
}

// ProviderModels lists the models of a provider in file order.
type ProviderModels struct {
	Provider string      `yaml:"provider" json:"provider"`
	Models   []ModelInfo `yaml:"-" json:"models"` // populated by UnmarshalYAML
}

// UnmarshalYAML keeps the key order of the models mapping.
func (p *ProviderModels) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Provider string               `yaml:"provider"`
		Models   map[string]ModelInfo `yaml:"models"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	p.Provider = m.Provider

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			id := modelsNode.Content[j].Value
			if model, ok := m.Models[id]; ok {
				model.ID = id
				model.Provider = m.Provider
				p.Models = append(p.Models, model)
			}
		}
		break
	}

	return nil
}

// Starter is a canned prompt shown on an empty chat.
type Starter struct {
	Title  string `yaml:"title" json:"title"`
	Prompt string `yaml:"prompt" json:"prompt"`
	Icon   string `yaml:"icon" json:"icon"`
}

// Prompts holds the system instruction and the starter prompts.
type Prompts struct {
	SystemInstruction string    `yaml:"system_instruction" json:"-"`
	Starters          []Starter `yaml:"starters" json:"starters"`
}
