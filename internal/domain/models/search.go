package models

import "time"

// SearchResultType is the kind of entity a hit refers to
type SearchResultType string

const (
	SearchTypeTemplate SearchResultType = "template"
	SearchTypeDocument SearchResultType = "document"
	SearchTypeQuery    SearchResultType = "query"
	SearchTypeAlert    SearchResultType = "alert"
)

// SearchTypes lists every searchable kind in result order
var SearchTypes = []SearchResultType{SearchTypeTemplate, SearchTypeDocument, SearchTypeQuery, SearchTypeAlert}

// SearchQuery is a free-text search request
type SearchQuery struct {
	Text   string
	Type   SearchResultType // empty searches every type
	Limit  int
	Offset int
}

// SearchResult is one hit
type SearchResult struct {
	Type     SearchResultType `json:"type"`
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Snippet  string           `json:"snippet"`
	ClientID string           `json:"client_id,omitempty"`
}

// SearchResults is a page of hits
type SearchResults struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
	Backend string         `json:"backend"`
}

// ArchiveLink is a presigned download link for an executed document
type ArchiveLink struct {
	DocumentID string    `json:"document_id"`
	Version    int       `json:"version"`
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ModelOption is a selectable analysis model
type ModelOption struct {
	ID          string `json:"id" yaml:"-"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Provider    string `json:"provider" yaml:"provider"`
	Description string `json:"description" yaml:"description"`
	Default     bool   `json:"default" yaml:"default"`
}
