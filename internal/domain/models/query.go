package models

import (
	"slices"
	"time"
)

// QueryStatus is the lifecycle state of a legal query
type QueryStatus string

const (
	QueryStatusPending   QueryStatus = "pending"
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusArchived  QueryStatus = "archived"
)

// QuerySections is the structured analysis returned for a legal query.
type QuerySections struct {
	Summary        string   `json:"summary" yaml:"summary"`
	Issues         []string `json:"issues" yaml:"issues"`
	ClausesToWatch []string `json:"clauses_to_watch" yaml:"clauses_to_watch"`
	Notes          string   `json:"notes" yaml:"notes"`
}

// LegalQuery is an AI-assisted legal question asked on behalf of a client.
// Once completed only archival may change it.
type LegalQuery struct {
	ID           string        `json:"id" yaml:"id"`
	ClientID     string        `json:"client_id" yaml:"client_id"`
	ClientName   string        `json:"client_name" yaml:"client_name"`
	Prompt       string        `json:"prompt" yaml:"prompt"`
	Topic        string        `json:"topic" yaml:"topic"`
	Model        string        `json:"model" yaml:"model"`
	Tags         []string      `json:"tags" yaml:"tags"`
	Attachments  []string      `json:"attachments" yaml:"attachments"`
	Sections     QuerySections `json:"sections" yaml:"sections"`
	FullAnswer   string        `json:"full_answer" yaml:"full_answer"`
	Status       QueryStatus   `json:"status" yaml:"status"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty" yaml:"completed_at"`
	VersionStamp int64         `json:"version_stamp" yaml:"version_stamp"`
}

// Clone returns a deep copy so callers never alias stored slices.
func (q *LegalQuery) Clone() *LegalQuery {
	c := *q
	c.Tags = slices.Clone(q.Tags)
	c.Attachments = slices.Clone(q.Attachments)
	c.Sections.Issues = slices.Clone(q.Sections.Issues)
	c.Sections.ClausesToWatch = slices.Clone(q.Sections.ClausesToWatch)
	if q.CompletedAt != nil {
		t := *q.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// QueryFilter narrows query listings
type QueryFilter struct {
	ClientID string
	Status   QueryStatus
}

// Analysis is what an analyzer produces for a query.
type Analysis struct {
	Sections   QuerySections
	FullAnswer string
	Tags       []string
}
