package search

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	meili "github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/events"
	"lexdesk/internal/repository/memory"
)

func seededStore(t *testing.T) *repositories.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Templates.Create(ctx, &models.Template{
		ID:       "template-1",
		Name:     "Mutual NDA",
		Version:  1,
		Versions: []models.TemplateVersion{{Version: 1, Content: "Confidential Information means any non-public information."}},
	}))
	require.NoError(t, store.Documents.Create(ctx, &models.Document{
		ID:           "doc-1",
		TemplateName: "SAFE",
		ClientName:   "ABC Fund",
		ClientID:     "client-2",
		Status:       models.DocumentStatusInNegotiation,
		Versions:     []models.DocumentVersion{{Version: 1, Content: "Valuation cap of $10M and a confidential side letter."}},
	}))
	require.NoError(t, store.Queries.Create(ctx, &models.LegalQuery{
		ID:       "query-1",
		ClientID: "client-1",
		Topic:    "Employment & Contractor Law",
		Prompt:   "Is the non-compete enforceable in California?",
	}))
	require.NoError(t, store.Alerts.Create(ctx, &models.ClientAlert{
		ID:      "alert-1",
		Title:   "New SEC Crowdfunding Rules",
		Summary: "Higher raise limits for startups",
		Content: "Regulation CF now allows larger offerings.",
		Tags:    []string{"securities", "startups"},
		Status:  models.AlertStatusPublished,
	}))
	require.NoError(t, store.Alerts.Create(ctx, &models.ClientAlert{
		ID:      "alert-2",
		Title:   "Old crowdfunding guidance",
		Content: "Superseded.",
		Status:  models.AlertStatusArchived,
	}))
	return store
}

func TestMemorySearch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(seededStore(t))

	tests := []struct {
		name  string
		query models.SearchQuery
		ids   []string
		total int
	}{
		{"case insensitive across types", models.SearchQuery{Text: "CONFIDENTIAL"}, []string{"template-1", "doc-1"}, 2},
		{"type filter", models.SearchQuery{Text: "confidential", Type: models.SearchTypeDocument}, []string{"doc-1"}, 1},
		{"title match", models.SearchQuery{Text: "employment"}, []string{"query-1"}, 1},
		{"paged", models.SearchQuery{Text: "confidential", Offset: 1, Limit: 1}, []string{"doc-1"}, 2},
		{"offset past end", models.SearchQuery{Text: "confidential", Offset: 5}, nil, 2},
		{"alert title skips archived", models.SearchQuery{Text: "crowdfunding"}, []string{"alert-1"}, 1},
		{"alert tag", models.SearchQuery{Text: "SECURITIES", Type: models.SearchTypeAlert}, []string{"alert-1"}, 1},
		{"alert type filter excludes others", models.SearchQuery{Text: "confidential", Type: models.SearchTypeAlert}, nil, 0},
		{"no match", models.SearchQuery{Text: "arbitration"}, nil, 0},
		{"blank", models.SearchQuery{Text: "  "}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := m.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			var ids []string
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestServiceFallsBackToMemory(t *testing.T) {
	svc := NewService(nil, seededStore(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, err := svc.Search(context.Background(), models.SearchQuery{Text: "non-compete"})
	require.NoError(t, err)
	assert.Equal(t, "memory", res.Backend)
	require.Len(t, res.Results, 1)
	assert.Equal(t, models.SearchTypeQuery, res.Results[0].Type)
	assert.Equal(t, "client-1", res.Results[0].ClientID)

	empty, err := svc.Search(context.Background(), models.SearchQuery{Text: "nothing here"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Results)

	// without meilisearch, events are ignored
	assert.NoError(t, svc.HandleEvent(context.Background(), events.New(events.TopicQuerySubmitted, "q", events.QueryPayload{})))
	assert.NoError(t, svc.ReindexAll(context.Background()))
}

func TestSnippet(t *testing.T) {
	body := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa Governing Law: Delaware"
	got := snippet(body, "governing", 20)
	assert.Contains(t, got, "Governing")
	assert.LessOrEqual(t, len([]rune(got)), 20)

	assert.Equal(t, "short", snippet("short", "missing", 20))
}

func TestHitToResult(t *testing.T) {
	raw := func(v any) json.RawMessage {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}
	hit := meili.Hit{
		"id":       raw("doc-1"),
		"type":     raw("document"),
		"title":    raw("SAFE - ABC Fund"),
		"body":     raw("Valuation cap"),
		"clientId": raw("client-2"),
		"_formatted": raw(map[string]string{
			"title": "SAFE - ABC Fund",
			"body":  "<mark>Valuation</mark> cap",
		}),
	}

	r := hitToResult(hit)
	assert.Equal(t, models.SearchTypeDocument, r.Type)
	assert.Equal(t, "doc-1", r.ID)
	assert.Equal(t, "<mark>Valuation</mark> cap", r.Snippet)
	assert.Equal(t, "client-2", r.ClientID)
}

func TestRecords(t *testing.T) {
	tmpl := &models.Template{ID: "template-1", Name: "SAFE", Description: "Simple agreement", Source: models.TemplateSourceFirm,
		Version: 2, Versions: []models.TemplateVersion{{Version: 1, Content: "old"}, {Version: 2, Content: "new"}}}
	r := TemplateRecord(tmpl)
	assert.Equal(t, "Simple agreement\nnew", r.Body)
	assert.Equal(t, "template", r.Type)

	alert := AlertRecord(&models.ClientAlert{ID: "alert-1", Title: "Privacy update", Summary: "GDPR fines",
		Tags: []string{"privacy", "eu"}, Content: "Full text", Status: models.AlertStatusDraft})
	assert.Equal(t, "alert", alert.Type)
	assert.Equal(t, "GDPR fines\nprivacy eu\nFull text", alert.Body)
	assert.Equal(t, "draft", alert.Status)
}
