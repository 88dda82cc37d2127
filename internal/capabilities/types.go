package capabilities

import (
	"gopkg.in/yaml.v3"

	"lexdesk/internal/domain/models"
)

// Catalogue is the parsed model list
type Catalogue struct {
	Models []models.ModelOption `yaml:"-"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML keeps models in the order they appear in the file
func (c *Catalogue) UnmarshalYAML(node *yaml.Node) error {
	var m struct {
		Models map[string]models.ModelOption `yaml:"models"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}

	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		// key, value, key, value...
		for j := 0; j < len(modelsNode.Content); j += 2 {
			id := modelsNode.Content[j].Value
			if opt, ok := m.Models[id]; ok {
				opt.ID = id
				c.Models = append(c.Models, opt)
			}
		}
		break
	}
	return nil
}
