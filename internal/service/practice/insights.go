package practice

import (
	"cmp"
	"context"
	"slices"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
)

// insightsLimit is how many rows each insight list holds
const insightsLimit = 5

type insightsService struct {
	store *repositories.Store
}

// NewInsightsService creates a service that derives insights from the store on every call
func NewInsightsService(store *repositories.Store) services.InsightsService {
	return &insightsService{store: store}
}

// GetInsights ranks templates by usage, query topics by count and clients by activity.
// Ties are broken by name so the output is stable.
func (s *insightsService) GetInsights(ctx context.Context) (*models.Insights, error) {
	templates, err := s.store.Templates.List(ctx, models.TemplateFilter{})
	if err != nil {
		return nil, err
	}
	queries, err := s.store.Queries.List(ctx, models.QueryFilter{})
	if err != nil {
		return nil, err
	}
	clients, err := s.store.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Activity.List(ctx, models.FeedFilter{})
	if err != nil {
		return nil, err
	}

	usage := make([]models.TemplateUsage, 0, len(templates))
	for _, t := range templates {
		if t.UsageCount > 0 {
			usage = append(usage, models.TemplateUsage{TemplateID: t.ID, Name: t.Name, Count: t.UsageCount})
		}
	}
	slices.SortFunc(usage, func(a, b models.TemplateUsage) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Name, b.Name))
	})

	byTopic := make(map[string]int)
	for _, q := range queries {
		byTopic[q.Topic]++
	}
	topics := make([]models.TopicCount, 0, len(byTopic))
	for topic, n := range byTopic {
		topics = append(topics, models.TopicCount{Topic: topic, Count: n})
	}
	slices.SortFunc(topics, func(a, b models.TopicCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Topic, b.Topic))
	})

	// ActivityCount is the imported baseline; feed posts add to it
	perClient := make(map[string]int)
	for _, p := range posts {
		perClient[p.ClientID]++
	}
	active := make([]models.ClientActivity, 0, len(clients))
	for _, c := range clients {
		n := c.ActivityCount + perClient[c.ID]
		if n > 0 {
			active = append(active, models.ClientActivity{ClientID: c.ID, Name: c.Name, Count: n})
		}
	}
	slices.SortFunc(active, func(a, b models.ClientActivity) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Name, b.Name))
	})

	return &models.Insights{
		TopTemplates:   usage[:min(len(usage), insightsLimit)],
		TopQueryTopics: topics[:min(len(topics), insightsLimit)],
		ActiveClients:  active[:min(len(active), insightsLimit)],
	}, nil
}
