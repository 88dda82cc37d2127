package services

import (
	"context"

	"lexdesk/internal/domain/models"
)

// TemplateService handles the template library: creation, version chain and sharing.
type TemplateService interface {
	CreateTemplate(ctx context.Context, req *CreateTemplateRequest) (*models.Template, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context, filter models.TemplateFilter) ([]models.TemplateSummary, error)
	ListVersions(ctx context.Context, id string) ([]models.TemplateVersion, error)

	// AppendVersion adds the next template version. Version must be current+1 (or 0 to let the server assign it).
	AppendVersion(ctx context.Context, req *AppendTemplateVersionRequest) (*models.Template, error)

	// Share unions client IDs into the template's audience. Idempotent.
	Share(ctx context.Context, req *ShareRequest) (*models.Template, error)
}

// DocumentService handles negotiated documents and their version chains.
type DocumentService interface {
	// CreateDocument instantiates a draft from the template's current version
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)

	// AppendVersion appends a revision and advances the document state machine
	AppendVersion(ctx context.Context, req *AppendVersionRequest) (*models.Document, error)

	// CancelDocument moves a non-terminal document to cancelled
	CancelDocument(ctx context.Context, req *CancelDocumentRequest) (*models.Document, error)

	// CompareVersions returns a line diff between two revisions
	CompareVersions(ctx context.Context, id string, from, to int) (*models.VersionComparison, error)
}

// CreateTemplateRequest represents a template creation request
type CreateTemplateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Source      models.TemplateSource `json:"source"`
	Content     string                `json:"content"`
	SharedWith  []string              `json:"shared_with"`
}

// AppendTemplateVersionRequest represents a new template version
type AppendTemplateVersionRequest struct {
	TemplateID string `json:"-"` // Set by handler from path
	Version    int    `json:"version"`
	Changes    string `json:"changes"`
	Content    string `json:"content"`
	IfMatch    *int64 `json:"-"` // Set by handler from If-Match header
}

// ShareRequest adds clients to a template or alert audience
type ShareRequest struct {
	ID        string   `json:"-"` // Set by handler from path
	ClientIDs []string `json:"client_ids"`
	IfMatch   *int64   `json:"-"`
}

// CreateDocumentRequest represents a document instantiation request
type CreateDocumentRequest struct {
	TemplateID string `json:"template_id"`
	ClientID   string `json:"client_id"`
	Author     string `json:"author"` // Defaults to the authenticated user
}

// AppendVersionRequest represents a new document revision
type AppendVersionRequest struct {
	DocumentID string             `json:"-"` // Set by handler from path
	Version    int                `json:"version"`
	Type       models.VersionType `json:"type"`
	Content    string             `json:"content"`
	Changes    []string           `json:"changes"`
	Author     string             `json:"author"`
	IfMatch    *int64             `json:"-"`
}

// CancelDocumentRequest represents a cancellation
type CancelDocumentRequest struct {
	DocumentID string `json:"-"`
	Reason     string `json:"reason"`
	Author     string `json:"author"`
	IfMatch    *int64 `json:"-"`
}
