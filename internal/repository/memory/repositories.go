package memory

import (
	"context"
	"slices"
	"sync"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
)

// NewStore builds an empty in-memory store. Each call returns an isolated instance.
func NewStore() *repositories.Store {
	return &repositories.Store{
		Clients:   NewClientRepository(),
		Templates: NewTemplateRepository(),
		Documents: NewDocumentRepository(),
		Activity:  NewActivityRepository(),
		Queries:   NewQueryRepository(),
		Alerts:    NewAlertRepository(),
		Profile:   NewProfileRepository(),
		Tx:        TransactionManager{},
	}
}

// TransactionManager runs fn directly. Every memory write is a whole-record swap,
// and services validate before writing, so there is nothing to roll back.
type TransactionManager struct{}

func (TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// Clients

type ClientRepository struct {
	c *collection[models.Client]
}

func NewClientRepository() *ClientRepository {
	return &ClientRepository{c: newCollection("client", func(c *models.Client) *models.Client {
		cp := *c
		return &cp
	})}
}

func (r *ClientRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	return r.c.get(id)
}

func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	return r.c.list(nil), nil
}

func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	return r.c.create(client.ID, client)
}

func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.c.update(client.ID, client)
}

// Templates

type TemplateRepository struct {
	c *collection[models.Template]
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{c: newCollection("template", (*models.Template).Clone)}
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	return r.c.get(id)
}

func (r *TemplateRepository) List(ctx context.Context, f models.TemplateFilter) ([]models.Template, error) {
	return r.c.list(func(t *models.Template) bool {
		if f.Category != "" && t.Category != f.Category {
			return false
		}
		if f.Source != "" && t.Source != f.Source {
			return false
		}
		if f.ClientID != "" && !slices.Contains(t.SharedWith, f.ClientID) {
			return false
		}
		return true
	}), nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	return r.c.create(t.ID, t)
}

func (r *TemplateRepository) Update(ctx context.Context, t *models.Template) error {
	return r.c.update(t.ID, t)
}

// Documents

type DocumentRepository struct {
	c *collection[models.Document]
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{c: newCollection("document", (*models.Document).Clone)}
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	return r.c.get(id)
}

func (r *DocumentRepository) List(ctx context.Context, f models.DocumentFilter) ([]models.Document, error) {
	return r.c.list(func(d *models.Document) bool {
		if f.ClientID != "" && d.ClientID != f.ClientID {
			return false
		}
		if f.TemplateID != "" && d.TemplateID != f.TemplateID {
			return false
		}
		if f.Status != "" && d.Status != f.Status {
			return false
		}
		return true
	}), nil
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	return r.c.create(d.ID, d)
}

func (r *DocumentRepository) Update(ctx context.Context, d *models.Document) error {
	return r.c.update(d.ID, d)
}

// Activity

type ActivityRepository struct {
	c *collection[models.ActivityPost]

	mu    sync.Mutex
	dedup map[string]string // dedup key -> post ID
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{
		c:     newCollection("activity post", (*models.ActivityPost).Clone),
		dedup: make(map[string]string),
	}
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (*models.ActivityPost, error) {
	return r.c.get(id)
}

func (r *ActivityRepository) GetByDedupKey(ctx context.Context, key string) (*models.ActivityPost, error) {
	r.mu.Lock()
	id, ok := r.dedup[key]
	r.mu.Unlock()
	if !ok {
		return nil, domain.NewNotFound("activity post", key)
	}
	return r.c.get(id)
}

func (r *ActivityRepository) List(ctx context.Context, f models.FeedFilter) ([]models.ActivityPost, error) {
	return r.c.list(f.Matches), nil
}

func (r *ActivityRepository) Create(ctx context.Context, p *models.ActivityPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.DedupKey != "" {
		if existing, ok := r.dedup[p.DedupKey]; ok {
			return &domain.ConflictError{
				Message:      "activity already recorded for " + p.DedupKey,
				ResourceType: "activity post",
				ResourceID:   existing,
			}
		}
	}
	if err := r.c.create(p.ID, p); err != nil {
		return err
	}
	if p.DedupKey != "" {
		r.dedup[p.DedupKey] = p.ID
	}
	return nil
}

func (r *ActivityRepository) Update(ctx context.Context, p *models.ActivityPost) error {
	return r.c.update(p.ID, p)
}

// Queries

type QueryRepository struct {
	c *collection[models.LegalQuery]
}

func NewQueryRepository() *QueryRepository {
	return &QueryRepository{c: newCollection("query", (*models.LegalQuery).Clone)}
}

func (r *QueryRepository) Get(ctx context.Context, id string) (*models.LegalQuery, error) {
	return r.c.get(id)
}

func (r *QueryRepository) List(ctx context.Context, f models.QueryFilter) ([]models.LegalQuery, error) {
	return r.c.list(func(q *models.LegalQuery) bool {
		if f.ClientID != "" && q.ClientID != f.ClientID {
			return false
		}
		if f.Status != "" && q.Status != f.Status {
			return false
		}
		return true
	}), nil
}

func (r *QueryRepository) Create(ctx context.Context, q *models.LegalQuery) error {
	return r.c.create(q.ID, q)
}

func (r *QueryRepository) Update(ctx context.Context, q *models.LegalQuery) error {
	return r.c.update(q.ID, q)
}

// Alerts

type AlertRepository struct {
	c *collection[models.ClientAlert]
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{c: newCollection("alert", (*models.ClientAlert).Clone)}
}

func (r *AlertRepository) Get(ctx context.Context, id string) (*models.ClientAlert, error) {
	return r.c.get(id)
}

func (r *AlertRepository) List(ctx context.Context, f models.AlertFilter) ([]models.ClientAlert, error) {
	return r.c.list(func(a *models.ClientAlert) bool {
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if f.ClientID != "" && !slices.Contains(a.Audience, f.ClientID) {
			return false
		}
		return true
	}), nil
}

func (r *AlertRepository) Create(ctx context.Context, a *models.ClientAlert) error {
	return r.c.create(a.ID, a)
}

func (r *AlertRepository) Update(ctx context.Context, a *models.ClientAlert) error {
	return r.c.update(a.ID, a)
}

// Profile

type ProfileRepository struct {
	mu      sync.RWMutex
	profile *models.LawyerProfile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

func (r *ProfileRepository) Get(ctx context.Context) (*models.LawyerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return nil, domain.NewNotFound("profile", "lawyer")
	}
	p := *r.profile
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *models.LawyerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *profile
	r.profile = &p
	return nil
}
