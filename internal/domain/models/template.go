package models

import (
	"slices"
	"time"
)

// TemplateSource records where a template came from
type TemplateSource string

const (
	TemplateSourceFirm TemplateSource = "firm"
	TemplateSourceAI   TemplateSource = "ai"
)

// InitialTemplateChanges is the change note recorded on version 1 of a new template.
const InitialTemplateChanges = "Initial template creation"

// TemplateVersion is an immutable snapshot of template content.
type TemplateVersion struct {
	Version   int       `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Changes   string    `json:"changes" yaml:"changes"`
	Content   string    `json:"content" yaml:"content"`
}

// Template is a reusable document template with an append-only version chain.
// Version always equals the highest entry in Versions.
type Template struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	Category     string            `json:"category" yaml:"category"`
	Source       TemplateSource    `json:"source" yaml:"source"`
	Version      int               `json:"version" yaml:"version"`
	Versions     []TemplateVersion `json:"versions" yaml:"versions"`
	SharedWith   []string          `json:"shared_with" yaml:"shared_with"`
	UsageCount   int               `json:"usage_count" yaml:"usage_count"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" yaml:"updated_at"`
	VersionStamp int64             `json:"version_stamp" yaml:"version_stamp"`
}

// Clone returns a deep copy so callers never alias stored slices.
func (t *Template) Clone() *Template {
	c := *t
	c.Versions = slices.Clone(t.Versions)
	c.SharedWith = slices.Clone(t.SharedWith)
	return &c
}

// CurrentVersion returns the latest version entry, or nil if the chain is empty.
func (t *Template) CurrentVersion() *TemplateVersion {
	if len(t.Versions) == 0 {
		return nil
	}
	return &t.Versions[len(t.Versions)-1]
}

// TemplateSummary is the list projection of a template (no version content).
type TemplateSummary struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	Source       TemplateSource `json:"source"`
	Version      int            `json:"version"`
	SharedWith   []string       `json:"shared_with"`
	UsageCount   int            `json:"usage_count"`
	UpdatedAt    time.Time      `json:"updated_at"`
	VersionStamp int64          `json:"version_stamp"`
}

// Summary projects the template for list responses.
func (t *Template) Summary() TemplateSummary {
	return TemplateSummary{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Category:     t.Category,
		Source:       t.Source,
		Version:      t.Version,
		SharedWith:   slices.Clone(t.SharedWith),
		UsageCount:   t.UsageCount,
		UpdatedAt:    t.UpdatedAt,
		VersionStamp: t.VersionStamp,
	}
}

// TemplateFilter narrows template listings
type TemplateFilter struct {
	Category string
	Source   TemplateSource
	ClientID string // only templates shared with this client
}
