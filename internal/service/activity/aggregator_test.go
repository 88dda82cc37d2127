package activity

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
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/repository/memory"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	store := memory.NewStore()
	return NewAggregator(store.Activity, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ptr[T any](v T) *T { return &v }

func TestRecordEventReplayReturnsSamePost(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)

	req := &services.RecordEventRequest{
		Type:            models.ActivityNegotiationTurn,
		Title:           "NDA with XYZ Corp",
		ClientID:        "client-1",
		DocumentID:      ptr("doc-1"),
		DocumentVersion: ptr(3),
	}

	first, err := agg.RecordEvent(ctx, req)
	require.NoError(t, err)
	second, err := agg.RecordEvent(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, DocumentKey("doc-1", 3), second.DedupKey)

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}

func TestRecordEventConcurrentReplay(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := agg.RecordEvent(ctx, &services.RecordEventRequest{
				Type:     models.ActivityLegalQuery,
				Title:    "Legal query",
				ClientID: "client-1",
				DedupKey: "query:q-1:submitted",
			})
			if assert.NoError(t, err) {
				ids[i] = p.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestRecordEventValidation(t *testing.T) {
	agg := newTestAggregator(t)

	tests := []struct {
		name string
		req  *services.RecordEventRequest
	}{
		{"missing type", &services.RecordEventRequest{Title: "x", ClientID: "client-1"}},
		{"unknown type", &services.RecordEventRequest{Type: "gossip", Title: "x", ClientID: "client-1"}},
		{"missing title", &services.RecordEventRequest{Type: models.ActivityLegalQuery, ClientID: "client-1"}},
		{"missing client", &services.RecordEventRequest{Type: models.ActivityLegalQuery, Title: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.RecordEvent(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestListFeedNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	agg := NewAggregator(store.Activity, slog.New(slog.NewTextHandler(io.Discard, nil)))

	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	for _, p := range []struct {
		id string
		at time.Time
	}{
		{"a", base},
		{"b", base.Add(2 * time.Hour)},
		{"c", base.Add(time.Hour)},
		{"d", base.Add(2 * time.Hour)},
	} {
		require.NoError(t, store.Activity.Create(ctx, &models.ActivityPost{
			PostFields: models.PostFields{ID: p.id, Type: models.ActivityDraftSent, Title: p.id, ClientID: "client-1", CreatedAt: p.at},
		}))
	}

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	require.NoError(t, err)

	var ids []string
	for _, p := range feed {
		ids = append(ids, p.ID)
	}
	// b and d tie; insertion order breaks the tie
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)

	limited, err := Collect(agg.ListFeed(ctx, models.FeedFilter{Limit: 2}))
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListFeedIsRestartable(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)

	seq := agg.ListFeed(ctx, models.FeedFilter{ClientID: "client-1"})

	empty, err := Collect(seq)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = agg.RecordEvent(ctx, &services.RecordEventRequest{
		Type: models.ActivityDraftSent, Title: "Draft sent", ClientID: "client-1",
	})
	require.NoError(t, err)
	_, err = agg.RecordEvent(ctx, &services.RecordEventRequest{
		Type: models.ActivityDraftSent, Title: "Other client", ClientID: "client-2",
	})
	require.NoError(t, err)

	again, err := Collect(seq)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestListFeedCancelledContext(t *testing.T) {
	agg := newTestAggregator(t)
	_, err := agg.RecordEvent(context.Background(), &services.RecordEventRequest{
		Type: models.ActivityDraftSent, Title: "Draft sent", ClientID: "client-1",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttachThread(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)

	parent, err := agg.RecordEvent(ctx, &services.RecordEventRequest{
		Type: models.ActivityLegalQuery, Title: "Legal query: IP", ClientID: "client-1",
	})
	require.NoError(t, err)

	updated, err := agg.AttachThread(ctx, &services.AttachThreadRequest{
		ParentID: parent.ID,
		Type:     models.ActivityQueryAnswered,
		Title:    "Analysis ready",
		Author:   "claude-3.5-sonnet",
	})
	require.NoError(t, err)
	require.Len(t, updated.ThreadPosts, 1)
	assert.Equal(t, "client-1", updated.ThreadPosts[0].ClientID)
	assert.Equal(t, "claude-3.5-sonnet", updated.ThreadPosts[0].Author)

	_, err = agg.AttachThread(ctx, &services.AttachThreadRequest{
		ParentID: "activity-missing",
		Type:     models.ActivityQueryAnswered,
		Title:    "Analysis ready",
	})
	assert.ErrorIs(t, err, domain.ErrParentNotFound)
}

func negotiationDoc() *models.Document {
	return &models.Document{
		ID:           "doc-1",
		TemplateID:   "template-1",
		TemplateName: "Mutual NDA",
		ClientID:     "client-1",
		ClientName:   "XYZ Corp",
		Status:       models.DocumentStatusInNegotiation,
		Versions: []models.DocumentVersion{
			{Version: 1, Type: models.VersionTypeTemplate, Content: "a\nb\nc\nd\n"},
			{Version: 2, Type: models.VersionTypeInitialDraft, Content: "a\nb\nc\nd\n"},
			{Version: 3, Type: models.VersionTypeNegotiationTurn, Content: "a\nB\nc\nd\n", Changes: []string{"Narrowed b"}},
			{Version: 4, Type: models.VersionTypeNegotiationTurn, Content: "a\nB\nc\nD\n"},
		},
	}
}

func TestHandleEventDocumentVersions(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)
	doc := negotiationDoc()

	want := map[int]models.ActivityType{
		1: models.ActivityTemplateUsed,
		2: models.ActivityInitialDraft,
		3: models.ActivityFirstTurn,
		4: models.ActivityNegotiationTurn,
	}

	for _, v := range doc.Versions {
		e := events.New(events.TopicDocumentVersionAppended, doc.ID, events.DocumentPayload{Document: doc, Version: &v})
		require.NoError(t, agg.HandleEvent(ctx, e))
		// replay
		require.NoError(t, agg.HandleEvent(ctx, e))
	}

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{DocumentID: "doc-1"}))
	require.NoError(t, err)
	require.Len(t, feed, 4)

	got := map[int]models.ActivityPost{}
	for _, p := range feed {
		require.NotNil(t, p.DocumentVersion)
		got[*p.DocumentVersion] = p
	}
	for n, typ := range want {
		assert.Equal(t, typ, got[n].Type, "version %d", n)
	}
	assert.Equal(t, []string{"25% of lines changed"}, got[3].Flags)
	assert.Equal(t, "Narrowed b", got[3].Content)
}

func TestHandleEventOutOfOrderDelivery(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)
	doc := negotiationDoc()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := range doc.Versions {
		doc.Versions[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	// v4 is delivered before v3, as when two appends publish after releasing the lock
	for _, n := range []int{4, 3} {
		v := doc.Versions[n-1]
		require.NoError(t, agg.HandleEvent(ctx, events.New(events.TopicDocumentVersionAppended, doc.ID,
			events.DocumentPayload{Document: doc, Version: &v})))
	}

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{DocumentID: doc.ID}))
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, 4, *feed[0].DocumentVersion)
	assert.Equal(t, 3, *feed[1].DocumentVersion)
	assert.True(t, feed[1].CreatedAt.Equal(doc.Versions[2].CreatedAt))
}

func TestHandleEventCancelled(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)
	doc := negotiationDoc()
	doc.Status = models.DocumentStatusCancelled

	e := events.New(events.TopicDocumentCancelled, doc.ID, events.DocumentPayload{Document: doc, Reason: "deal fell through"})
	require.NoError(t, agg.HandleEvent(ctx, e))
	require.NoError(t, agg.HandleEvent(ctx, e))

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.ActivityCancelled, feed[0].Type)
	assert.Contains(t, feed[0].Description, "deal fell through")
}

func TestHandleEventQueryLifecycle(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)

	q := &models.LegalQuery{
		ID:       "query-1",
		ClientID: "client-1",
		Topic:    "Intellectual Property",
		Prompt:   "Can the licensee sublicense?",
		Model:    "gpt-4",
		Status:   models.QueryStatusPending,
	}
	require.NoError(t, agg.HandleEvent(ctx, events.New(events.TopicQuerySubmitted, q.ID, events.QueryPayload{Query: q})))

	done := *q
	done.Status = models.QueryStatusCompleted
	done.Sections.Summary = "Sublicensing requires consent."
	done.FullAnswer = "Full answer"
	completed := events.New(events.TopicQueryCompleted, q.ID, events.QueryPayload{Query: &done})
	require.NoError(t, agg.HandleEvent(ctx, completed))
	require.NoError(t, agg.HandleEvent(ctx, completed))

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.ActivityLegalQuery, feed[0].Type)
	require.Len(t, feed[0].ThreadPosts, 1)
	assert.Equal(t, models.ActivityQueryAnswered, feed[0].ThreadPosts[0].Type)
	assert.Equal(t, "gpt-4", feed[0].ThreadPosts[0].Author)
}

func TestAttachSubscribesToBus(t *testing.T) {
	ctx := context.Background()
	agg := newTestAggregator(t)
	bus := events.NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	agg.Attach(bus)

	doc := negotiationDoc()
	v := doc.Versions[0]
	bus.Publish(ctx, events.New(events.TopicDocumentVersionAppended, doc.ID, events.DocumentPayload{Document: doc, Version: &v}))

	feed, err := Collect(agg.ListFeed(ctx, models.FeedFilter{}))
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.ActivityTemplateUsed, feed[0].Type)
}
