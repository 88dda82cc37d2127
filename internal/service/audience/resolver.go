// Package audience resolves the client sets attached to templates and alerts.
package audience

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"lexdesk/internal/config"
	"lexdesk/internal/domain"
	"lexdesk/internal/domain/repositories"
)

// Resolver merges client IDs into an audience with set semantics.
type Resolver struct {
	clients repositories.ClientRepository
}

// NewResolver creates a resolver that checks IDs against the client directory
func NewResolver(clients repositories.ClientRepository) *Resolver {
	return &Resolver{clients: clients}
}

// Union returns existing ∪ add, sorted and deduplicated, plus the IDs that were not already present.
// Every ID in add must name a known client.
func (r *Resolver) Union(ctx context.Context, existing, add []string) (merged, added []string, err error) {
	if len(add) == 0 {
		return nil, nil, domain.NewValidation("client_ids: cannot be blank")
	}
	if len(add) > config.MaxShareClients {
		return nil, nil, domain.NewValidation("client_ids: at most %d clients per call", config.MaxShareClients)
	}

	set := make(map[string]struct{}, len(existing)+len(add))
	for _, id := range existing {
		set[id] = struct{}{}
	}

	var unknown []string
	for _, raw := range add {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, nil, domain.NewValidation("client_ids: blank client id")
		}
		if _, ok := set[id]; ok {
			continue
		}
		if _, err := r.clients.Get(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				unknown = append(unknown, id)
				continue
			}
			return nil, nil, fmt.Errorf("look up client %s: %w", id, err)
		}
		set[id] = struct{}{}
		added = append(added, id)
	}

	if len(unknown) > 0 {
		return nil, nil, domain.NewValidation("unknown client ids: %s", strings.Join(unknown, ", "))
	}

	merged = make([]string, 0, len(set))
	for id := range set {
		merged = append(merged, id)
	}
	slices.Sort(merged)
	slices.Sort(added)
	return merged, added, nil
}
