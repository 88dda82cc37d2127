package practice

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
)

// Check reports the state of one backend component, e.g. "meilisearch" -> "healthy"
type Check struct {
	Name  string
	State func() string
}

type statusService struct {
	store  *repositories.Store
	checks []Check
}

// NewStatusService creates the operator status board. Checks are listed first, in order.
func NewStatusService(store *repositories.Store, checks ...Check) services.StatusService {
	return &statusService{store: store, checks: checks}
}

func (s *statusService) Status(ctx context.Context) ([]models.StatusRow, error) {
	rows := make([]models.StatusRow, 0, len(s.checks)+5)
	for _, c := range s.checks {
		rows = append(rows, models.StatusRow{Component: c.Name, State: c.State()})
	}

	clients, err := s.store.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	templates, err := s.store.Templates.List(ctx, models.TemplateFilter{})
	if err != nil {
		return nil, err
	}
	docs, err := s.store.Documents.List(ctx, models.DocumentFilter{})
	if err != nil {
		return nil, err
	}
	queries, err := s.store.Queries.List(ctx, models.QueryFilter{})
	if err != nil {
		return nil, err
	}
	alerts, err := s.store.Alerts.List(ctx, models.AlertFilter{})
	if err != nil {
		return nil, err
	}

	rows = append(rows,
		countRow("clients", clients, func(c models.Client) string { return string(c.Status) }),
		countRow("templates", templates, func(t models.Template) string { return string(t.Source) }),
		countRow("documents", docs, func(d models.Document) string { return string(d.Status) }),
		countRow("queries", queries, func(q models.LegalQuery) string { return string(q.Status) }),
		countRow("alerts", alerts, func(a models.ClientAlert) string { return string(a.Status) }),
	)
	return rows, nil
}

// countRow renders "3" with a "1 draft, 2 executed" breakdown by key
func countRow[T any](name string, items []T, key func(T) string) models.StatusRow {
	counts := make(map[string]int)
	for _, it := range items {
		counts[key(it)]++
	}

	parts := make([]string, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}

	return models.StatusRow{
		Component: name,
		State:     fmt.Sprintf("%d", len(items)),
		Detail:    strings.Join(parts, ", "),
	}
}
