package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
)

func TestTemplateRepositoryCopyOnRead(t *testing.T) {
	ctx := context.Background()
	repo := NewTemplateRepository()

	tmpl := &models.Template{
		ID:         "template-1",
		Name:       "Mutual NDA",
		Version:    1,
		Versions:   []models.TemplateVersion{{Version: 1, Content: "v1"}},
		SharedWith: []string{"client-1"},
	}
	require.NoError(t, repo.Create(ctx, tmpl))

	// mutating the caller's value after Create must not leak into the store
	tmpl.SharedWith[0] = "client-9"

	got, err := repo.Get(ctx, "template-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"client-1"}, got.SharedWith)

	// mutating a read copy must not leak either
	got.Versions = append(got.Versions, models.TemplateVersion{Version: 2})
	got.SharedWith[0] = "client-5"

	again, err := repo.Get(ctx, "template-1")
	require.NoError(t, err)
	assert.Len(t, again.Versions, 1)
	assert.Equal(t, []string{"client-1"}, again.SharedWith)
}

func TestRepositoryNotFoundAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Update(ctx, &models.Document{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.Document{ID: "doc-1"}))
	err = repo.Create(ctx, &models.Document{ID: "doc-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDocumentRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository()

	docs := []models.Document{
		{ID: "doc-1", ClientID: "client-1", Status: models.DocumentStatusInNegotiation},
		{ID: "doc-2", ClientID: "client-2", Status: models.DocumentStatusExecuted},
		{ID: "doc-3", ClientID: "client-1", Status: models.DocumentStatusDraft},
	}
	for i := range docs {
		require.NoError(t, repo.Create(ctx, &docs[i]))
	}

	tests := []struct {
		name   string
		filter models.DocumentFilter
		want   []string
	}{
		{"no filter keeps insertion order", models.DocumentFilter{}, []string{"doc-1", "doc-2", "doc-3"}},
		{"by client", models.DocumentFilter{ClientID: "client-1"}, []string{"doc-1", "doc-3"}},
		{"by status", models.DocumentFilter{Status: models.DocumentStatusExecuted}, []string{"doc-2"}},
		{"no match", models.DocumentFilter{ClientID: "client-9"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, d := range got {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestActivityRepositoryDedupKey(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityRepository()

	first := &models.ActivityPost{PostFields: models.PostFields{ID: "a-1"}, DedupKey: "document:doc-1:v2"}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.ActivityPost{PostFields: models.PostFields{ID: "a-2"}, DedupKey: "document:doc-1:v2"}
	err := repo.Create(ctx, dup)
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.GetByDedupKey(ctx, "document:doc-1:v2")
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.ID)

	_, err = repo.Get(ctx, "a-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// posts without a key never collide
	require.NoError(t, repo.Create(ctx, &models.ActivityPost{PostFields: models.PostFields{ID: "a-3"}}))
	require.NoError(t, repo.Create(ctx, &models.ActivityPost{PostFields: models.PostFields{ID: "a-4"}}))
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Save(ctx, &models.LawyerProfile{ID: "lawyer-1", Name: "Sarah Chen", VersionStamp: 1}))
	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Chen", got.Name)
}
