package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
)

// newTestStore needs a reachable database in TEST_DATABASE_URL.
func newTestStore(t *testing.T) *repositories.Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, url, "test_"))

	pool, err := CreateConnectionPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewStore(&RepositoryConfig{Pool: pool, Tables: NewTableNames("test_")})
}

func TestTemplateRepository_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	client := "client-" + uuid.NewString()

	tmpl := &models.Template{
		ID:         "template-" + uuid.NewString(),
		Name:       "NDA",
		Category:   "Confidentiality",
		Source:     models.TemplateSourceFirm,
		Version:    1,
		Versions:   []models.TemplateVersion{{Version: 1, Changes: "Initial", Content: "body"}},
		SharedWith: []string{client},
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.Templates.Create(ctx, tmpl))

	err := store.Templates.Create(ctx, tmpl)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Templates.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "NDA", got.Name)
	assert.True(t, tmpl.CreatedAt.Equal(got.CreatedAt))

	shared, err := store.Templates.List(ctx, models.TemplateFilter{ClientID: client})
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, tmpl.ID, shared[0].ID)

	got.UsageCount = 3
	require.NoError(t, store.Templates.Update(ctx, got))
	got, err = store.Templates.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UsageCount)

	_, err = store.Templates.Get(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = store.Templates.Update(ctx, &models.Template{ID: "missing-" + uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestActivityRepository_DedupKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := "document:" + uuid.NewString() + ":v1"

	post := &models.ActivityPost{
		PostFields: models.PostFields{ID: "post-" + uuid.NewString(), Type: models.ActivityInitialDraft, ClientID: "c1"},
		DedupKey:   key,
	}
	require.NoError(t, store.Activity.Create(ctx, post))

	dup := post.Clone()
	dup.ID = "post-" + uuid.NewString()
	assert.ErrorIs(t, store.Activity.Create(ctx, dup), domain.ErrConflict)

	got, err := store.Activity.GetByDedupKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, key, got.DedupKey)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := "client-" + uuid.NewString()

	err := store.Tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := store.Clients.Create(ctx, &models.Client{ID: id, Name: "Tx Corp"}); err != nil {
			return err
		}
		return domain.NewValidation("abort")
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = store.Clients.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProfileRepository_Save(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Profile.Save(ctx, &models.LawyerProfile{ID: "lawyer", Name: "Sarah Chen", VersionStamp: 1}))
	require.NoError(t, store.Profile.Save(ctx, &models.LawyerProfile{ID: "lawyer", Name: "Sarah Chen", VersionStamp: 2}))

	got, err := store.Profile.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.VersionStamp)
}
