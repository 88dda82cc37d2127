package repositories

import (
	"context"

	"lexdesk/internal/domain/models"
)

// Every Get returns domain.ErrNotFound (wrapped) for unknown IDs.
// Every returned entity is a copy owned by the caller; mutating it does not affect the store.

// ClientRepository defines data access for clients
type ClientRepository interface {
	Get(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
}

// TemplateRepository defines data access for templates
type TemplateRepository interface {
	Get(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context, filter models.TemplateFilter) ([]models.Template, error)
	Create(ctx context.Context, template *models.Template) error
	// Update replaces the stored record wholesale
	Update(ctx context.Context, template *models.Template) error
}

// DocumentRepository defines data access for negotiated documents
type DocumentRepository interface {
	Get(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
}

// ActivityRepository defines data access for feed posts
type ActivityRepository interface {
	Get(ctx context.Context, id string) (*models.ActivityPost, error)
	// GetByDedupKey finds the post recorded for a source event
	GetByDedupKey(ctx context.Context, key string) (*models.ActivityPost, error)
	// List returns posts in insertion order
	List(ctx context.Context, filter models.FeedFilter) ([]models.ActivityPost, error)
	// Create fails with domain.ErrConflict if the dedup key is already taken
	Create(ctx context.Context, post *models.ActivityPost) error
	Update(ctx context.Context, post *models.ActivityPost) error
}

// QueryRepository defines data access for legal queries
type QueryRepository interface {
	Get(ctx context.Context, id string) (*models.LegalQuery, error)
	List(ctx context.Context, filter models.QueryFilter) ([]models.LegalQuery, error)
	Create(ctx context.Context, query *models.LegalQuery) error
	Update(ctx context.Context, query *models.LegalQuery) error
}

// AlertRepository defines data access for client alerts
type AlertRepository interface {
	Get(ctx context.Context, id string) (*models.ClientAlert, error)
	List(ctx context.Context, filter models.AlertFilter) ([]models.ClientAlert, error)
	Create(ctx context.Context, alert *models.ClientAlert) error
	Update(ctx context.Context, alert *models.ClientAlert) error
}

// ProfileRepository defines data access for the lawyer profile
type ProfileRepository interface {
	Get(ctx context.Context) (*models.LawyerProfile, error)
	Save(ctx context.Context, profile *models.LawyerProfile) error
}

// Store bundles one implementation of every repository.
type Store struct {
	Clients   ClientRepository
	Templates TemplateRepository
	Documents DocumentRepository
	Activity  ActivityRepository
	Queries   QueryRepository
	Alerts    AlertRepository
	Profile   ProfileRepository
	Tx        TransactionManager
}
