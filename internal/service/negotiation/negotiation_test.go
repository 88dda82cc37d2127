package negotiation

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/repository/memory"
	"lexdesk/internal/service/audience"
	"lexdesk/internal/service/versionchain"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(events.Topic, string, events.Handler) {}

func (b *recordingBus) topics() []events.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Topic, len(b.events))
	for i, e := range b.events {
		out[i] = e.Topic
	}
	return out
}

type fixture struct {
	store     *repositories.Store
	bus       *recordingBus
	templates services.TemplateService
	documents services.DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for _, c := range []models.Client{
		{ID: "client-1", Name: "XYZ Corp"},
		{ID: "client-2", Name: "ABC Fund"},
		{ID: "client-9", Name: "Innovation Labs"},
	} {
		require.NoError(t, store.Clients.Create(ctx, &c))
	}
	require.NoError(t, store.Templates.Create(ctx, &models.Template{
		ID:           "template-1",
		Name:         "Mutual NDA",
		Category:     "Confidentiality",
		Source:       models.TemplateSourceFirm,
		Version:      1,
		Versions:     []models.TemplateVersion{{Version: 1, Changes: models.InitialTemplateChanges, Content: "NDA body\nTerm: 2 years\n"}},
		VersionStamp: 1,
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locker := versionchain.NewLocker()
	bus := &recordingBus{}

	return &fixture{
		store:     store,
		bus:       bus,
		templates: NewTemplateService(store.Templates, audience.NewResolver(store.Clients), locker, bus, logger),
		documents: NewDocumentService(store, locker, bus, logger),
	}
}

func TestShareIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.templates.Share(ctx, &services.ShareRequest{ID: "template-1", ClientIDs: []string{"client-9"}})
	require.NoError(t, err)
	second, err := f.templates.Share(ctx, &services.ShareRequest{ID: "template-1", ClientIDs: []string{"client-9"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"client-9"}, second.SharedWith)
	assert.Equal(t, first.VersionStamp, second.VersionStamp, "no-op share must not bump the stamp")
	assert.Equal(t, []events.Topic{events.TopicTemplateShared}, f.bus.topics())
}

func TestShareErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stale := int64(41)

	_, err := f.templates.Share(ctx, &services.ShareRequest{ID: "template-404", ClientIDs: []string{"client-1"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.templates.Share(ctx, &services.ShareRequest{ID: "template-1", ClientIDs: []string{"client-404"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.templates.Share(ctx, &services.ShareRequest{ID: "template-1", ClientIDs: []string{"client-1"}, IfMatch: &stale})
	assert.ErrorIs(t, err, domain.ErrStaleVersion)
}

func TestCreateTemplate(t *testing.T) {
	f := newFixture(t)

	tmpl, err := f.templates.CreateTemplate(context.Background(), &services.CreateTemplateRequest{
		Name:       "  Convertible Note ",
		Category:   "Investment",
		Content:    "Note body",
		SharedWith: []string{"client-2", "client-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Convertible Note", tmpl.Name)
	assert.Equal(t, models.TemplateSourceFirm, tmpl.Source)
	assert.Equal(t, 1, tmpl.Version)
	assert.Equal(t, models.InitialTemplateChanges, tmpl.Versions[0].Changes)
	assert.Equal(t, []string{"client-1", "client-2"}, tmpl.SharedWith)
	assert.Equal(t, int64(1), tmpl.VersionStamp)

	_, err = f.templates.CreateTemplate(context.Background(), &services.CreateTemplateRequest{Category: "Investment", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTemplateAppendVersion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tmpl, err := f.templates.AppendVersion(ctx, &services.AppendTemplateVersionRequest{
		TemplateID: "template-1", Version: 2, Changes: "Shortened term", Content: "NDA body\nTerm: 1 year\n",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tmpl.Version)

	_, err = f.templates.AppendVersion(ctx, &services.AppendTemplateVersionRequest{
		TemplateID: "template-1", Version: 2, Changes: "again", Content: "x",
	})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	versions, err := f.templates.ListVersions(ctx, "template-1")
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func createDraft(t *testing.T, f *fixture) *models.Document {
	t.Helper()
	doc, err := f.documents.CreateDocument(context.Background(), &services.CreateDocumentRequest{
		TemplateID: "template-1", ClientID: "client-1", Author: "Sarah Chen",
	})
	require.NoError(t, err)
	return doc
}

func TestCreateDocumentFromTemplate(t *testing.T) {
	f := newFixture(t)
	doc := createDraft(t, f)

	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.Equal(t, 1, doc.CurrentVersion)
	assert.Equal(t, models.VersionTypeTemplate, doc.Versions[0].Type)
	assert.Equal(t, "NDA body\nTerm: 2 years\n", doc.Versions[0].Content)
	assert.Equal(t, "XYZ Corp", doc.ClientName)
	assert.Equal(t, "Mutual NDA", doc.TemplateName)

	tmpl, err := f.templates.GetTemplate(context.Background(), "template-1")
	require.NoError(t, err)
	assert.Equal(t, 1, tmpl.UsageCount)

	assert.Equal(t, []events.Topic{events.TopicDocumentVersionAppended}, f.bus.topics())
}

func TestAppendVersionExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := createDraft(t, f)

	doc, err := f.documents.AppendVersion(ctx, &services.AppendVersionRequest{
		DocumentID: doc.ID, Version: 2, Type: models.VersionTypeNegotiationTurn,
		Content: "NDA body\nTerm: 3 years\n", Changes: []string{"Extended term"}, Author: "Counterparty",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusInNegotiation, doc.Status)
	assert.Equal(t, 2, doc.CurrentVersion)

	stored, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestAppendVersionConflictLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := createDraft(t, f)

	_, err := f.documents.AppendVersion(ctx, &services.AppendVersionRequest{
		DocumentID: doc.ID, Version: 5, Type: models.VersionTypeNegotiationTurn, Content: "x", Author: "a",
	})
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	stored, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, stored)
}

func TestAppendVersionRejectsStaleStamp(t *testing.T) {
	f := newFixture(t)
	doc := createDraft(t, f)
	stale := doc.VersionStamp + 1

	_, err := f.documents.AppendVersion(context.Background(), &services.AppendVersionRequest{
		DocumentID: doc.ID, Type: models.VersionTypeInitialDraft, Content: "x", Author: "a", IfMatch: &stale,
	})
	assert.ErrorIs(t, err, domain.ErrStaleVersion)
}

func TestConcurrentAppendsSerialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := createDraft(t, f)

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan error, writers)

	// every writer asks for version 2; exactly one may win
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.documents.AppendVersion(ctx, &services.AppendVersionRequest{
				DocumentID: doc.ID, Version: 2, Type: models.VersionTypeNegotiationTurn, Content: "turn", Author: "a",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	}
	assert.Equal(t, 1, wins)

	stored, err := f.documents.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentVersion)
	assert.Len(t, stored.Versions, 2)
}

func TestCancelAndClosedDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := createDraft(t, f)

	doc, err := f.documents.CancelDocument(ctx, &services.CancelDocumentRequest{DocumentID: doc.ID, Reason: "client withdrew"})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentStatusCancelled, doc.Status)

	_, err = f.documents.AppendVersion(ctx, &services.AppendVersionRequest{
		DocumentID: doc.ID, Type: models.VersionTypeNegotiationTurn, Content: "x", Author: "a",
	})
	assert.ErrorIs(t, err, domain.ErrDocumentClosed)

	_, err = f.documents.CancelDocument(ctx, &services.CancelDocumentRequest{DocumentID: doc.ID})
	assert.ErrorIs(t, err, domain.ErrDocumentClosed)
}

func TestCompareVersions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := createDraft(t, f)

	_, err := f.documents.AppendVersion(ctx, &services.AppendVersionRequest{
		DocumentID: doc.ID, Type: models.VersionTypeNegotiationTurn, Content: "NDA body\nTerm: 3 years\n", Author: "a",
	})
	require.NoError(t, err)

	cmp, err := f.documents.CompareVersions(ctx, doc.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp.Insertions)
	assert.Equal(t, 1, cmp.Deletions)

	_, err = f.documents.CompareVersions(ctx, doc.ID, 1, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.documents.CompareVersions(ctx, doc.ID, 0, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
