package models

import (
	"slices"
	"time"
)

// DocumentStatus is the negotiation state of a document
type DocumentStatus string

const (
	DocumentStatusDraft         DocumentStatus = "draft"
	DocumentStatusInNegotiation DocumentStatus = "in_negotiation"
	DocumentStatusExecuted      DocumentStatus = "executed"
	DocumentStatusCancelled     DocumentStatus = "cancelled"
)

// IsTerminal reports whether no further versions may be appended.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusExecuted || s == DocumentStatusCancelled
}

// VersionType classifies a document revision
type VersionType string

const (
	VersionTypeTemplate        VersionType = "template"
	VersionTypeInitialDraft    VersionType = "initial_draft"
	VersionTypeNegotiationTurn VersionType = "negotiation_turn"
	VersionTypeFinal           VersionType = "final"
)

// Valid reports whether the type is one of the known revision kinds.
func (t VersionType) Valid() bool {
	switch t {
	case VersionTypeTemplate, VersionTypeInitialDraft, VersionTypeNegotiationTurn, VersionTypeFinal:
		return true
	}
	return false
}

// DocumentVersion is one immutable revision in a document's chain.
type DocumentVersion struct {
	Version   int         `json:"version" yaml:"version"`
	Type      VersionType `json:"type" yaml:"type"`
	Content   string      `json:"content" yaml:"content"`
	Changes   []string    `json:"changes" yaml:"changes"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
	Author    string      `json:"author" yaml:"author"`
}

// Document is a negotiated agreement instantiated from a template.
// CurrentVersion always references the last entry in Versions.
type Document struct {
	ID             string            `json:"id" yaml:"id"`
	TemplateID     string            `json:"template_id" yaml:"template_id"`
	TemplateName   string            `json:"template_name" yaml:"template_name"`
	ClientID       string            `json:"client_id" yaml:"client_id"`
	ClientName     string            `json:"client_name" yaml:"client_name"`
	Status         DocumentStatus    `json:"status" yaml:"status"`
	CurrentVersion int               `json:"current_version" yaml:"current_version"`
	Versions       []DocumentVersion `json:"versions" yaml:"versions"`
	CreatedAt      time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" yaml:"updated_at"`
	VersionStamp   int64             `json:"version_stamp" yaml:"version_stamp"`
}

// Clone returns a deep copy so callers never alias stored slices.
func (d *Document) Clone() *Document {
	c := *d
	c.Versions = make([]DocumentVersion, len(d.Versions))
	for i, v := range d.Versions {
		v.Changes = slices.Clone(v.Changes)
		c.Versions[i] = v
	}
	return &c
}

// Version returns the revision with the given number.
func (d *Document) Version(n int) (*DocumentVersion, bool) {
	for i := range d.Versions {
		if d.Versions[i].Version == n {
			return &d.Versions[i], true
		}
	}
	return nil, false
}

// LatestVersion returns the current revision, or nil for an empty chain.
func (d *Document) LatestVersion() *DocumentVersion {
	if len(d.Versions) == 0 {
		return nil
	}
	return &d.Versions[len(d.Versions)-1]
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	ClientID   string
	TemplateID string
	Status     DocumentStatus
}

// DiffOp is the kind of a diff line
type DiffOp string

const (
	DiffOpEqual  DiffOp = "equal"
	DiffOpInsert DiffOp = "insert"
	DiffOpDelete DiffOp = "delete"
)

// DiffLine is one hunk of a line-level comparison
type DiffLine struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// VersionComparison is the line diff between two revisions of a document.
type VersionComparison struct {
	DocumentID  string     `json:"document_id"`
	FromVersion int        `json:"from_version"`
	ToVersion   int        `json:"to_version"`
	Insertions  int        `json:"insertions"`
	Deletions   int        `json:"deletions"`
	Lines       []DiffLine `json:"lines"`
}
