package services

import (
	"context"

	"lexdesk/internal/domain/models"
)

// Searcher answers free-text search across templates, documents and queries.
type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.SearchResults, error)
}

// Archiver stores executed documents and hands out download links.
type Archiver interface {
	// ArchiveLink returns a time-limited URL for the executed document's final version
	ArchiveLink(ctx context.Context, documentID string) (*models.ArchiveLink, error)
}
