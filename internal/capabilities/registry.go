// Package capabilities holds the catalogue of selectable analysis models.
package capabilities

import (
	"embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"lexdesk/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry is a read-only view over the embedded model catalogue
type Registry struct {
	models []models.ModelOption
}

// NewRegistry loads the embedded catalogue.
// defaultModel, when non-empty and known, overrides the default flag in the file.
func NewRegistry(defaultModel string) (*Registry, error) {
	data, err := configFiles.ReadFile("config/models.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalogue: %w", err)
	}
	return parse(data, defaultModel)
}

func parse(data []byte, defaultModel string) (*Registry, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model catalogue: %w", err)
	}
	if len(c.Models) == 0 {
		return nil, fmt.Errorf("model catalogue is empty")
	}

	if defaultModel != "" && slices.ContainsFunc(c.Models, func(m models.ModelOption) bool { return m.ID == defaultModel }) {
		for i := range c.Models {
			c.Models[i].Default = c.Models[i].ID == defaultModel
		}
	}
	return &Registry{models: c.Models}, nil
}

// Get returns the catalogue entry for a model ID
func (r *Registry) Get(id string) (models.ModelOption, bool) {
	for _, m := range r.models {
		if m.ID == id {
			return m, true
		}
	}
	return models.ModelOption{}, false
}

// List returns every model in catalogue order
func (r *Registry) List() []models.ModelOption {
	return slices.Clone(r.models)
}

// Default returns the model used when a query names none
func (r *Registry) Default() models.ModelOption {
	for _, m := range r.models {
		if m.Default {
			return m
		}
	}
	return r.models[0]
}
