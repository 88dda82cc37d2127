package search

import (
	"context"
	"fmt"
	"log/slog"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
)

// Service tries Meilisearch first and falls back to scanning the store.
type Service struct {
	meili  *Meili
	memory *Memory
	store  *repositories.Store
	logger *slog.Logger
}

var _ services.Searcher = (*Service)(nil)

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, store *repositories.Store, logger *slog.Logger) *Service {
	return &Service{meili: meili, memory: NewMemory(store), store: store, logger: logger}
}

// Search answers from Meilisearch when healthy, otherwise from the store
func (s *Service) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResults, error) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(ctx, q)
		if err == nil {
			return &models.SearchResults{Results: nonNil(results), Total: total, Backend: "meilisearch"}, nil
		}
		s.logger.Warn("meilisearch error, falling back to memory scan", "error", err)
	}

	results, total, err := s.memory.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}
	return &models.SearchResults{Results: nonNil(results), Total: total, Backend: "memory"}, nil
}

// Attach keeps the index current from domain events
func (s *Service) Attach(bus events.Bus) {
	if s.meili == nil {
		return
	}
	for _, topic := range []events.Topic{
		events.TopicTemplateCreated,
		events.TopicTemplateVersionAppended,
		events.TopicTemplateShared,
		events.TopicDocumentVersionAppended,
		events.TopicDocumentCancelled,
		events.TopicQuerySubmitted,
		events.TopicQueryCompleted,
		events.TopicQueryArchived,
		events.TopicAlertCreated,
		events.TopicAlertPublished,
		events.TopicAlertAudience,
		events.TopicAlertArchived,
	} {
		bus.Subscribe(topic, "search", s.HandleEvent)
	}
}

// HandleEvent indexes the entity snapshot carried by e. Archived alerts are dropped from the index.
func (s *Service) HandleEvent(ctx context.Context, e events.Event) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}

	var r Record
	switch p := e.Payload.(type) {
	case events.TemplatePayload:
		r = TemplateRecord(p.Template)
	case events.DocumentPayload:
		r = DocumentRecord(p.Document)
	case events.QueryPayload:
		r = QueryRecord(p.Query)
	case events.AlertPayload:
		if p.Alert.Status == models.AlertStatusArchived {
			return s.meili.Delete(models.SearchTypeAlert, p.Alert.ID)
		}
		r = AlertRecord(p.Alert)
	default:
		return nil
	}
	return s.meili.Index(r)
}

// ReindexAll pushes every searchable entity in the store to Meilisearch
func (s *Service) ReindexAll(ctx context.Context) error {
	if s.meili == nil || !s.meili.Healthy() {
		return nil
	}

	var records []Record
	templates, err := s.store.Templates.List(ctx, models.TemplateFilter{})
	if err != nil {
		return err
	}
	for i := range templates {
		records = append(records, TemplateRecord(&templates[i]))
	}
	docs, err := s.store.Documents.List(ctx, models.DocumentFilter{})
	if err != nil {
		return err
	}
	for i := range docs {
		records = append(records, DocumentRecord(&docs[i]))
	}
	queries, err := s.store.Queries.List(ctx, models.QueryFilter{})
	if err != nil {
		return err
	}
	for i := range queries {
		records = append(records, QueryRecord(&queries[i]))
	}
	alerts, err := s.store.Alerts.List(ctx, models.AlertFilter{})
	if err != nil {
		return err
	}
	for i := range alerts {
		if alerts[i].Status != models.AlertStatusArchived {
			records = append(records, AlertRecord(&alerts[i]))
		}
	}

	if len(records) == 0 {
		return nil
	}
	if err := s.meili.Index(records...); err != nil {
		return err
	}
	s.logger.Info("search index rebuilt", "records", len(records))
	return nil
}
