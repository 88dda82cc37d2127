package practice

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/events"
	"lexdesk/internal/repository/memory"
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

func str(s string) *string { return &s }

func present(s *string) models.OptionalField {
	return models.OptionalField{Present: true, Value: s}
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProfileRepository()
	require.NoError(t, repo.Save(ctx, &models.LawyerProfile{
		ID:           "lawyer-1",
		Name:         "Sarah Chen",
		Title:        "Partner",
		Email:        "sarah.chen@lawfirm.com",
		Phone:        "+1 (555) 123-4567",
		FirmName:     "Chen & Associates",
		VersionStamp: 1,
	}))
	bus := &recordingBus{}
	svc := NewProfileService(repo, bus, slog.New(slog.NewTextHandler(io.Discard, nil)))

	before := time.Now().UTC()
	stamp := int64(1)
	p, err := svc.UpdateProfile(ctx, &models.UpdateProfileRequest{
		Title:   present(str("Managing Partner")),
		Phone:   present(nil),
		IfMatch: &stamp,
	})
	require.NoError(t, err)

	assert.Equal(t, "Managing Partner", p.Title)
	assert.Empty(t, p.Phone)
	assert.Equal(t, "Sarah Chen", p.Name, "absent fields are untouched")
	assert.Equal(t, int64(2), p.VersionStamp)
	assert.False(t, p.LastUpdated.Before(before))
	assert.Equal(t, []events.Topic{events.TopicProfileUpdated}, bus.topics)

	_, err = svc.UpdateProfile(ctx, &models.UpdateProfileRequest{Title: present(str("x")), IfMatch: &stamp})
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	noop, err := svc.UpdateProfile(ctx, &models.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), noop.VersionStamp)
}

func TestUpdateProfileValidation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProfileRepository()
	require.NoError(t, repo.Save(ctx, &models.LawyerProfile{ID: "lawyer-1", Name: "Sarah Chen", VersionStamp: 1}))
	svc := NewProfileService(repo, &recordingBus{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		req  *models.UpdateProfileRequest
	}{
		{"clear name", &models.UpdateProfileRequest{Name: present(nil)}},
		{"blank name", &models.UpdateProfileRequest{Name: present(str("  "))}},
		{"bad email", &models.UpdateProfileRequest{Email: present(str("not-an-email"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateProfile(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	p, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.VersionStamp, "rejected updates change nothing")
}

func TestGetProfileMissing(t *testing.T) {
	svc := NewProfileService(memory.NewProfileRepository(), &recordingBus{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := svc.GetProfile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetInsights(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	for _, c := range []models.Client{
		{ID: "client-1", Name: "XYZ Corp", ActivityCount: 3},
		{ID: "client-2", Name: "ABC Fund"},
		{ID: "client-3", Name: "TechStart Inc", ActivityCount: 1},
	} {
		require.NoError(t, store.Clients.Create(ctx, &c))
	}
	for _, tmpl := range []models.Template{
		{ID: "template-1", Name: "Mutual NDA", UsageCount: 24},
		{ID: "template-2", Name: "1-Way NDA", UsageCount: 18},
		{ID: "template-3", Name: "SAFE", UsageCount: 18},
		{ID: "template-4", Name: "Unused"},
	} {
		require.NoError(t, store.Templates.Create(ctx, &tmpl))
	}
	for i, topic := range []string{"Corporate Law", "Tax Law", "Corporate Law"} {
		require.NoError(t, store.Queries.Create(ctx, &models.LegalQuery{ID: string(rune('a' + i)), Topic: topic}))
	}
	require.NoError(t, store.Activity.Create(ctx, &models.ActivityPost{PostFields: models.PostFields{ID: "p1", ClientID: "client-3"}}))
	require.NoError(t, store.Activity.Create(ctx, &models.ActivityPost{PostFields: models.PostFields{ID: "p2", ClientID: "client-2"}}))

	got, err := NewInsightsService(store).GetInsights(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.TemplateUsage{
		{TemplateID: "template-1", Name: "Mutual NDA", Count: 24},
		{TemplateID: "template-2", Name: "1-Way NDA", Count: 18},
		{TemplateID: "template-3", Name: "SAFE", Count: 18},
	}, got.TopTemplates)
	assert.Equal(t, []models.TopicCount{{Topic: "Corporate Law", Count: 2}, {Topic: "Tax Law", Count: 1}}, got.TopQueryTopics)
	assert.Equal(t, []models.ClientActivity{
		{ClientID: "client-1", Name: "XYZ Corp", Count: 3},
		{ClientID: "client-3", Name: "TechStart Inc", Count: 2},
		{ClientID: "client-2", Name: "ABC Fund", Count: 1},
	}, got.ActiveClients)
}

func TestClientService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Clients.Create(ctx, &models.Client{ID: "client-1", Name: "XYZ Corp"}))
	svc := NewClientService(store.Clients)

	list, err := svc.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetClient(ctx, "client-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, c := range []models.Client{
		{ID: "c1", Name: "XYZ Corp", Status: models.ClientStatusActive},
		{ID: "c2", Name: "ABC Fund", Status: models.ClientStatusActive},
		{ID: "c3", Name: "Old Co", Status: models.ClientStatusInactive},
	} {
		require.NoError(t, store.Clients.Create(ctx, &c))
	}
	require.NoError(t, store.Alerts.Create(ctx, &models.ClientAlert{ID: "a1", Status: models.AlertStatusDraft}))

	svc := NewStatusService(store,
		Check{Name: "store", State: func() string { return "memory" }},
		Check{Name: "search", State: func() string { return "disabled" }},
	)
	rows, err := svc.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.StatusRow{
		{Component: "store", State: "memory"},
		{Component: "search", State: "disabled"},
		{Component: "clients", State: "3", Detail: "2 active, 1 inactive"},
		{Component: "templates", State: "0", Detail: ""},
		{Component: "documents", State: "0", Detail: ""},
		{Component: "queries", State: "0", Detail: ""},
		{Component: "alerts", State: "1", Detail: "1 draft"},
	}, rows)
}
