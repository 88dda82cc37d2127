package negotiation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"lexdesk/internal/config"
	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/service/versionchain"
)

var versionTypes = []any{
	models.VersionTypeTemplate,
	models.VersionTypeInitialDraft,
	models.VersionTypeNegotiationTurn,
	models.VersionTypeFinal,
}

// documentService implements the DocumentService interface
type documentService struct {
	documents repositories.DocumentRepository
	templates repositories.TemplateRepository
	clients   repositories.ClientRepository
	txManager repositories.TransactionManager
	locker    *versionchain.Locker
	bus       events.Bus
	logger    *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	store *repositories.Store,
	locker *versionchain.Locker,
	bus events.Bus,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		documents: store.Documents,
		templates: store.Templates,
		clients:   store.Clients,
		txManager: store.Tx,
		locker:    locker,
		bus:       bus,
		logger:    logger,
	}
}

func documentLockKey(id string) string { return "document:" + id }

// CreateDocument instantiates a draft from the template's current version and
// counts the instantiation against the template's usage.
func (s *documentService) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateDocumentRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(templateLockKey(req.TemplateID))
	doc, err := s.createDocumentLocked(ctx, req, client)
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"template_id", doc.TemplateID,
		"client_id", doc.ClientID,
	)

	s.publishVersion(ctx, doc)
	return doc, nil
}

func (s *documentService) createDocumentLocked(ctx context.Context, req *services.CreateDocumentRequest, client *models.Client) (*models.Document, error) {
	tmpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	current := tmpl.CurrentVersion()
	if current == nil {
		return nil, domain.NewValidation("template %s has no versions", tmpl.ID)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:             "doc-" + uuid.NewString(),
		TemplateID:     tmpl.ID,
		TemplateName:   tmpl.Name,
		ClientID:       client.ID,
		ClientName:     client.Name,
		Status:         models.DocumentStatusDraft,
		CurrentVersion: 1,
		Versions: []models.DocumentVersion{{
			Version:   1,
			Type:      models.VersionTypeTemplate,
			Content:   current.Content,
			Changes:   []string{fmt.Sprintf("Created from %s v%d", tmpl.Name, current.Version)},
			CreatedAt: now,
			Author:    strings.TrimSpace(req.Author),
		}},
		CreatedAt:    now,
		UpdatedAt:    now,
		VersionStamp: 1,
	}

	tmpl.UsageCount++
	tmpl.VersionStamp++

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.documents.Create(ctx, doc); err != nil {
			return err
		}
		return s.templates.Update(ctx, tmpl)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument retrieves a document with its version chain
func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.documents.Get(ctx, id)
}

// ListDocuments lists documents matching the filter
func (s *documentService) ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	return s.documents.List(ctx, filter)
}

// AppendVersion appends a revision under the document lock
func (s *documentService) AppendVersion(ctx context.Context, req *services.AppendVersionRequest) (*models.Document, error) {
	if err := s.validateAppendVersionRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locker.Lock(documentLockKey(req.DocumentID))
	doc, err := s.appendVersionLocked(ctx, req)
	unlock()
	if err != nil {
		s.logger.Debug("append version rejected",
			"document_id", req.DocumentID,
			"version", req.Version,
			"type", req.Type,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("document version appended",
		"id", doc.ID,
		"version", doc.CurrentVersion,
		"type", req.Type,
		"status", doc.Status,
	)

	s.publishVersion(ctx, doc)
	return doc, nil
}

func (s *documentService) appendVersionLocked(ctx context.Context, req *services.AppendVersionRequest) (*models.Document, error) {
	doc, err := s.documents.Get(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVersionStamp(doc.ID, doc.VersionStamp, req.IfMatch); err != nil {
		return nil, err
	}

	_, err = versionchain.AppendDocumentVersion(doc, models.DocumentVersion{
		Version: req.Version,
		Type:    req.Type,
		Content: req.Content,
		Changes: req.Changes,
		Author:  strings.TrimSpace(req.Author),
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CancelDocument moves a document to cancelled
func (s *documentService) CancelDocument(ctx context.Context, req *services.CancelDocumentRequest) (*models.Document, error) {
	unlock := s.locker.Lock(documentLockKey(req.DocumentID))
	doc, err := s.cancelLocked(ctx, req)
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("document cancelled", "id", doc.ID, "reason", req.Reason)

	e := events.New(events.TopicDocumentCancelled, doc.ID, events.DocumentPayload{
		Document: doc.Clone(),
		Reason:   req.Reason,
	})
	e.Version = doc.CurrentVersion
	e.Actor = req.Author
	s.bus.Publish(ctx, e)
	return doc, nil
}

func (s *documentService) cancelLocked(ctx context.Context, req *services.CancelDocumentRequest) (*models.Document, error) {
	doc, err := s.documents.Get(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVersionStamp(doc.ID, doc.VersionStamp, req.IfMatch); err != nil {
		return nil, err
	}
	if err := versionchain.CancelDocument(doc, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CompareVersions diffs two revisions of a document
func (s *documentService) CompareVersions(ctx context.Context, id string, from, to int) (*models.VersionComparison, error) {
	if from < 1 || to < 1 {
		return nil, domain.NewValidation("from and to must be positive version numbers")
	}

	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fromV, ok := doc.Version(from)
	if !ok {
		return nil, domain.NewNotFound("document version", fmt.Sprintf("%s v%d", id, from))
	}
	toV, ok := doc.Version(to)
	if !ok {
		return nil, domain.NewNotFound("document version", fmt.Sprintf("%s v%d", id, to))
	}

	lines, ins, del := versionchain.DiffLines(fromV.Content, toV.Content)
	return &models.VersionComparison{
		DocumentID:  id,
		FromVersion: from,
		ToVersion:   to,
		Insertions:  ins,
		Deletions:   del,
		Lines:       lines,
	}, nil
}

// publishVersion announces the document's latest version
func (s *documentService) publishVersion(ctx context.Context, doc *models.Document) {
	snapshot := doc.Clone()
	latest := snapshot.LatestVersion()

	e := events.New(events.TopicDocumentVersionAppended, doc.ID, events.DocumentPayload{
		Document: snapshot,
		Version:  latest,
	})
	e.Version = latest.Version
	e.Actor = latest.Author
	s.bus.Publish(ctx, e)
}

// Validation methods

func (s *documentService) validateCreateDocumentRequest(req *services.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.TemplateID, validation.Required),
		validation.Field(&req.ClientID, validation.Required),
		validation.Field(&req.Author, validation.Required),
	)
}

func (s *documentService) validateAppendVersionRequest(req *services.AppendVersionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Version, validation.Min(0)),
		validation.Field(&req.Type,
			validation.Required,
			validation.In(versionTypes...),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxVersionContentLength),
		),
		validation.Field(&req.Changes, validation.Length(0, config.MaxChangeNotes)),
		validation.Field(&req.Author, validation.Required),
	)
}
