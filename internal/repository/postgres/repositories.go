package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
)

// Clients

type ClientRepository struct {
	t *jsonTable[models.Client]
}

func NewClientRepository(cfg *RepositoryConfig) repositories.ClientRepository {
	return &ClientRepository{t: &jsonTable[models.Client]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Clients,
		resource: "client",
		columns:  []string{"status"},
		key: func(c *models.Client) (string, []any) {
			return c.ID, []any{string(c.Status)}
		},
	}}
}

func (r *ClientRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	return r.t.get(ctx, id)
}

func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	return r.t.list(ctx, &where{})
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.t.create(ctx, c)
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	return r.t.update(ctx, c)
}

// Templates

type TemplateRepository struct {
	t *jsonTable[models.Template]
}

func NewTemplateRepository(cfg *RepositoryConfig) repositories.TemplateRepository {
	return &TemplateRepository{t: &jsonTable[models.Template]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Templates,
		resource: "template",
		columns:  []string{"category", "source"},
		key: func(t *models.Template) (string, []any) {
			return t.ID, []any{t.Category, string(t.Source)}
		},
	}}
}

func (r *TemplateRepository) Get(ctx context.Context, id string) (*models.Template, error) {
	return r.t.get(ctx, id)
}

func (r *TemplateRepository) List(ctx context.Context, f models.TemplateFilter) ([]models.Template, error) {
	w := (&where{}).eq("category", f.Category).eq("source", string(f.Source))
	if f.ClientID != "" {
		w.add("(data -> 'shared_with') ? $%d", f.ClientID)
	}
	return r.t.list(ctx, w)
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	return r.t.create(ctx, t)
}

func (r *TemplateRepository) Update(ctx context.Context, t *models.Template) error {
	return r.t.update(ctx, t)
}

// Documents

type DocumentRepository struct {
	t *jsonTable[models.Document]
}

func NewDocumentRepository(cfg *RepositoryConfig) repositories.DocumentRepository {
	return &DocumentRepository{t: &jsonTable[models.Document]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Documents,
		resource: "document",
		columns:  []string{"client_id", "template_id", "status"},
		key: func(d *models.Document) (string, []any) {
			return d.ID, []any{d.ClientID, d.TemplateID, string(d.Status)}
		},
	}}
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	return r.t.get(ctx, id)
}

func (r *DocumentRepository) List(ctx context.Context, f models.DocumentFilter) ([]models.Document, error) {
	w := (&where{}).
		eq("client_id", f.ClientID).
		eq("template_id", f.TemplateID).
		eq("status", string(f.Status))
	return r.t.list(ctx, w)
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	return r.t.create(ctx, d)
}

func (r *DocumentRepository) Update(ctx context.Context, d *models.Document) error {
	return r.t.update(ctx, d)
}

// Activity

// activityRecord keeps the dedup key inside the stored JSON; the API form hides it.
type activityRecord struct {
	models.ActivityPost
	DedupKey string `json:"dedup_key,omitempty"`
}

func (a *activityRecord) post() *models.ActivityPost {
	p := a.ActivityPost
	p.DedupKey = a.DedupKey
	return &p
}

type ActivityRepository struct {
	t *jsonTable[activityRecord]
}

func NewActivityRepository(cfg *RepositoryConfig) repositories.ActivityRepository {
	return &ActivityRepository{t: &jsonTable[activityRecord]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Activity,
		resource: "activity post",
		columns:  []string{"client_id", "document_id", "dedup_key"},
		key: func(a *activityRecord) (string, []any) {
			return a.ID, []any{a.ClientID, nullablePtr(a.DocumentID), nullable(a.DedupKey)}
		},
	}}
}

func toRecord(p *models.ActivityPost) *activityRecord {
	return &activityRecord{ActivityPost: *p, DedupKey: p.DedupKey}
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (*models.ActivityPost, error) {
	rec, err := r.t.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.post(), nil
}

func (r *ActivityRepository) GetByDedupKey(ctx context.Context, key string) (*models.ActivityPost, error) {
	rec, err := r.t.getWhere(ctx, key, "dedup_key = $1", key)
	if err != nil {
		return nil, err
	}
	return rec.post(), nil
}

func (r *ActivityRepository) List(ctx context.Context, f models.FeedFilter) ([]models.ActivityPost, error) {
	recs, err := r.t.list(ctx, (&where{}).eq("client_id", f.ClientID).eq("document_id", f.DocumentID))
	if err != nil {
		return nil, err
	}
	out := make([]models.ActivityPost, 0, len(recs))
	for i := range recs {
		out = append(out, *recs[i].post())
	}
	return out, nil
}

// Create maps a dedup_key collision to a ConflictError naming the key
func (r *ActivityRepository) Create(ctx context.Context, p *models.ActivityPost) error {
	err := r.t.create(ctx, toRecord(p))
	var conflict *domain.ConflictError
	if p.DedupKey != "" && errors.As(err, &conflict) {
		return &domain.ConflictError{
			Message:      "activity already recorded for " + p.DedupKey,
			ResourceType: "activity post",
			ResourceID:   p.ID,
		}
	}
	return err
}

func (r *ActivityRepository) Update(ctx context.Context, p *models.ActivityPost) error {
	return r.t.update(ctx, toRecord(p))
}

// Queries

type QueryRepository struct {
	t *jsonTable[models.LegalQuery]
}

func NewQueryRepository(cfg *RepositoryConfig) repositories.QueryRepository {
	return &QueryRepository{t: &jsonTable[models.LegalQuery]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Queries,
		resource: "query",
		columns:  []string{"client_id", "status"},
		key: func(q *models.LegalQuery) (string, []any) {
			return q.ID, []any{q.ClientID, string(q.Status)}
		},
	}}
}

func (r *QueryRepository) Get(ctx context.Context, id string) (*models.LegalQuery, error) {
	return r.t.get(ctx, id)
}

func (r *QueryRepository) List(ctx context.Context, f models.QueryFilter) ([]models.LegalQuery, error) {
	return r.t.list(ctx, (&where{}).eq("client_id", f.ClientID).eq("status", string(f.Status)))
}

func (r *QueryRepository) Create(ctx context.Context, q *models.LegalQuery) error {
	return r.t.create(ctx, q)
}

func (r *QueryRepository) Update(ctx context.Context, q *models.LegalQuery) error {
	return r.t.update(ctx, q)
}

// Alerts

type AlertRepository struct {
	t *jsonTable[models.ClientAlert]
}

func NewAlertRepository(cfg *RepositoryConfig) repositories.AlertRepository {
	return &AlertRepository{t: &jsonTable[models.ClientAlert]{
		pool:     cfg.Pool,
		name:     cfg.Tables.Alerts,
		resource: "alert",
		columns:  []string{"status"},
		key: func(a *models.ClientAlert) (string, []any) {
			return a.ID, []any{string(a.Status)}
		},
	}}
}

func (r *AlertRepository) Get(ctx context.Context, id string) (*models.ClientAlert, error) {
	return r.t.get(ctx, id)
}

func (r *AlertRepository) List(ctx context.Context, f models.AlertFilter) ([]models.ClientAlert, error) {
	w := (&where{}).eq("status", string(f.Status))
	if f.ClientID != "" {
		w.add("(data -> 'audience') ? $%d", f.ClientID)
	}
	return r.t.list(ctx, w)
}

func (r *AlertRepository) Create(ctx context.Context, a *models.ClientAlert) error {
	return r.t.create(ctx, a)
}

func (r *AlertRepository) Update(ctx context.Context, a *models.ClientAlert) error {
	return r.t.update(ctx, a)
}

// Profile

// profileID is the single row the lawyer profile lives in
const profileID = "lawyer"

type ProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

func NewProfileRepository(cfg *RepositoryConfig) repositories.ProfileRepository {
	return &ProfileRepository{pool: cfg.Pool, tables: cfg.Tables}
}

func (r *ProfileRepository) Get(ctx context.Context) (*models.LawyerProfile, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE id = $1`, r.tables.Profile)

	var data []byte
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, profileID).Scan(&data); err != nil {
		if isPgNoRowsError(err) {
			return nil, domain.NewNotFound("profile", profileID)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var p models.LawyerProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *models.LawyerProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, r.tables.Profile)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, profileID, data); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
