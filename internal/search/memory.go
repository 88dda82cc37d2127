package search

import (
	"context"
	"strings"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
)

const snippetLength = 160

// Memory searches the entity store directly with case-insensitive substring matching.
// It serves when Meilisearch is not configured or unhealthy.
type Memory struct {
	store *repositories.Store
}

// NewMemory creates a store-backed searcher
func NewMemory(store *repositories.Store) *Memory {
	return &Memory{store: store}
}

// Search scans templates, documents, queries and alerts in that order.
// Archived alerts are not searchable.
func (m *Memory) Search(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, int, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, 0, nil
	}

	var hits []models.SearchResult
	want := func(t models.SearchResultType) bool { return q.Type == "" || q.Type == t }

	if want(models.SearchTypeTemplate) {
		templates, err := m.store.Templates.List(ctx, models.TemplateFilter{})
		if err != nil {
			return nil, 0, err
		}
		for i := range templates {
			hits = appendIfMatch(hits, TemplateRecord(&templates[i]), text)
		}
	}
	if want(models.SearchTypeDocument) {
		docs, err := m.store.Documents.List(ctx, models.DocumentFilter{})
		if err != nil {
			return nil, 0, err
		}
		for i := range docs {
			hits = appendIfMatch(hits, DocumentRecord(&docs[i]), text)
		}
	}
	if want(models.SearchTypeQuery) {
		queries, err := m.store.Queries.List(ctx, models.QueryFilter{})
		if err != nil {
			return nil, 0, err
		}
		for i := range queries {
			hits = appendIfMatch(hits, QueryRecord(&queries[i]), text)
		}
	}

	if want(models.SearchTypeAlert) {
		alerts, err := m.store.Alerts.List(ctx, models.AlertFilter{})
		if err != nil {
			return nil, 0, err
		}
		for i := range alerts {
			if alerts[i].Status == models.AlertStatusArchived {
				continue
			}
			hits = appendIfMatch(hits, AlertRecord(&alerts[i]), text)
		}
	}

	total := len(hits)
	return page(hits, q.Offset, q.Limit), total, nil
}

func appendIfMatch(hits []models.SearchResult, r Record, text string) []models.SearchResult {
	if !containsFold(text, r.Title, r.Body) {
		return hits
	}
	return append(hits, models.SearchResult{
		Type:     models.SearchResultType(r.Type),
		ID:       r.ID,
		Title:    r.Title,
		Snippet:  snippet(r.Body, text, snippetLength),
		ClientID: r.ClientID,
	})
}

func page(hits []models.SearchResult, offset, limit int) []models.SearchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return nil
	}
	hits = hits[offset:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	return hits
}
