package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/repositories"
)

// Counts reports how many records of each kind a seed run inserted
type Counts struct {
	Clients   int
	Templates int
	Documents int
	Activity  int
	Queries   int
	Alerts    int
	Profile   bool
}

// Seeder writes fixtures into a store. Records that already exist are left alone,
// so seeding the same file twice is a no-op.
type Seeder struct {
	store  *repositories.Store
	logger *slog.Logger
}

// NewSeeder creates a seeder for store
func NewSeeder(store *repositories.Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Seed inserts fx in a single transaction
func (s *Seeder) Seed(ctx context.Context, fx *Fixtures) (Counts, error) {
	var counts Counts
	err := s.store.Tx.ExecTx(ctx, func(ctx context.Context) error {
		counts = Counts{}

		if fx.Profile != nil {
			_, err := s.store.Profile.Get(ctx)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				if err := s.store.Profile.Save(ctx, fx.Profile); err != nil {
					return fmt.Errorf("seed profile: %w", err)
				}
				counts.Profile = true
			case err != nil:
				return fmt.Errorf("seed profile: %w", err)
			}
		}

		var err error
		if counts.Clients, err = insertMissing(ctx, "client", fx.Clients,
			func(i int) string { return fx.Clients[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Clients.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Clients.Create(ctx, &fx.Clients[i]) },
		); err != nil {
			return err
		}
		if counts.Templates, err = insertMissing(ctx, "template", fx.Templates,
			func(i int) string { return fx.Templates[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Templates.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Templates.Create(ctx, &fx.Templates[i]) },
		); err != nil {
			return err
		}
		if counts.Documents, err = insertMissing(ctx, "document", fx.Documents,
			func(i int) string { return fx.Documents[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Documents.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Documents.Create(ctx, &fx.Documents[i]) },
		); err != nil {
			return err
		}
		if counts.Activity, err = insertMissing(ctx, "activity post", fx.Activity,
			func(i int) string { return fx.Activity[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Activity.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Activity.Create(ctx, &fx.Activity[i]) },
		); err != nil {
			return err
		}
		if counts.Queries, err = insertMissing(ctx, "query", fx.Queries,
			func(i int) string { return fx.Queries[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Queries.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Queries.Create(ctx, &fx.Queries[i]) },
		); err != nil {
			return err
		}
		if counts.Alerts, err = insertMissing(ctx, "alert", fx.Alerts,
			func(i int) string { return fx.Alerts[i].ID },
			func(ctx context.Context, id string) error { _, err := s.store.Alerts.Get(ctx, id); return err },
			func(ctx context.Context, i int) error { return s.store.Alerts.Create(ctx, &fx.Alerts[i]) },
		); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Counts{}, err
	}

	s.logger.Info("seed complete",
		"clients", counts.Clients,
		"templates", counts.Templates,
		"documents", counts.Documents,
		"activity", counts.Activity,
		"queries", counts.Queries,
		"alerts", counts.Alerts,
		"profile", counts.Profile,
	)
	return counts, nil
}

// insertMissing creates every item whose ID is not yet stored. The existence check
// runs first so a postgres transaction never sees a failed insert.
func insertMissing[T any](
	ctx context.Context,
	resource string,
	items []T,
	id func(int) string,
	get func(context.Context, string) error,
	create func(context.Context, int) error,
) (int, error) {
	inserted := 0
	for i := range items {
		err := get(ctx, id(i))
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return inserted, fmt.Errorf("seed %s %s: %w", resource, id(i), err)
		}
		if err := create(ctx, i); err != nil {
			return inserted, fmt.Errorf("seed %s %s: %w", resource, id(i), err)
		}
		inserted++
	}
	return inserted, nil
}
