package alert

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
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/repository/memory"
	"lexdesk/internal/service/audience"
)

type recordingBus struct {
	mu     sync.Mutex
	topics []events.Topic
}

func (b *recordingBus) Publish(ctx context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, e.Topic)
}

func (b *recordingBus) Subscribe(events.Topic, string, events.Handler) {}

func newTestService(t *testing.T) (services.AlertService, *recordingBus) {
	t.Helper()
	store := memory.NewStore()
	for _, c := range []models.Client{{ID: "client-1", Name: "XYZ Corp"}, {ID: "client-2", Name: "ABC Fund"}} {
		require.NoError(t, store.Clients.Create(context.Background(), &c))
	}
	bus := &recordingBus{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAlertService(store.Alerts, audience.NewResolver(store.Clients), bus, logger), bus
}

func draft(t *testing.T, svc services.AlertService) *models.ClientAlert {
	t.Helper()
	a, err := svc.CreateAlert(context.Background(), &services.CreateAlertRequest{
		Title:    " New SEC reporting rules ",
		Summary:  "Quarterly filings change",
		Content:  "Details...",
		Tags:     []string{"compliance"},
		Audience: []string{"client-2", "client-1", "client-2"},
	})
	require.NoError(t, err)
	return a
}

func TestCreateAlert(t *testing.T) {
	svc, _ := newTestService(t)
	a := draft(t, svc)

	assert.Equal(t, "New SEC reporting rules", a.Title)
	assert.Equal(t, models.AlertStatusDraft, a.Status)
	assert.Equal(t, []string{"client-1", "client-2"}, a.Audience)
	assert.Equal(t, int64(1), a.VersionStamp)
	assert.Nil(t, a.PublishedAt)
}

func TestCreateAlertValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  *services.CreateAlertRequest
	}{
		{"missing title", &services.CreateAlertRequest{Content: "x", Audience: []string{"client-1"}}},
		{"missing content", &services.CreateAlertRequest{Title: "x", Audience: []string{"client-1"}}},
		{"empty audience", &services.CreateAlertRequest{Title: "x", Content: "x"}},
		{"unknown client", &services.CreateAlertRequest{Title: "x", Content: "x", Audience: []string{"client-404"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAlert(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAlertLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, bus := newTestService(t)
	a := draft(t, svc)

	_, err := svc.RecordEngagement(ctx, a.ID, models.EngagementView)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "drafts cannot be viewed")

	stale := int64(7)
	_, err = svc.PublishAlert(ctx, a.ID, &stale)
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	published, err := svc.PublishAlert(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)

	_, err = svc.PublishAlert(ctx, a.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.RecordEngagement(ctx, a.ID, models.EngagementView)
	require.NoError(t, err)
	got, err := svc.RecordEngagement(ctx, a.ID, models.EngagementInteract)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)
	assert.Equal(t, 1, got.Engagement)

	_, err = svc.RecordEngagement(ctx, a.ID, "share")
	assert.ErrorIs(t, err, domain.ErrValidation)

	archived, err := svc.ArchiveAlert(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AlertStatusArchived, archived.Status)

	_, err = svc.ArchiveAlert(ctx, a.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.SetAudience(ctx, &services.ShareRequest{ID: a.ID, ClientIDs: []string{"client-1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, []events.Topic{events.TopicAlertCreated, events.TopicAlertPublished, events.TopicAlertArchived}, bus.topics)
}

func TestSetAudienceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, bus := newTestService(t)
	a, err := svc.CreateAlert(ctx, &services.CreateAlertRequest{Title: "t", Content: "c", Audience: []string{"client-1"}})
	require.NoError(t, err)

	first, err := svc.SetAudience(ctx, &services.ShareRequest{ID: a.ID, ClientIDs: []string{"client-2"}})
	require.NoError(t, err)
	second, err := svc.SetAudience(ctx, &services.ShareRequest{ID: a.ID, ClientIDs: []string{"client-2", "client-1"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"client-1", "client-2"}, second.Audience)
	assert.Equal(t, first.VersionStamp, second.VersionStamp)
	assert.Equal(t, []events.Topic{events.TopicAlertCreated, events.TopicAlertAudience}, bus.topics)

	_, err = svc.SetAudience(ctx, &services.ShareRequest{ID: "alert-404", ClientIDs: []string{"client-1"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
