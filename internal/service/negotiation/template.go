// Package negotiation implements the template library and negotiated documents.
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
	"lexdesk/internal/service/audience"
	"lexdesk/internal/service/versionchain"
)

// templateService implements the TemplateService interface
type templateService struct {
	templates repositories.TemplateRepository
	resolver  *audience.Resolver
	locker    *versionchain.Locker
	bus       events.Bus
	logger    *slog.Logger
}

// NewTemplateService creates a new template service.
// The locker must be shared with the document service, which also writes templates.
func NewTemplateService(
	templates repositories.TemplateRepository,
	resolver *audience.Resolver,
	locker *versionchain.Locker,
	bus events.Bus,
	logger *slog.Logger,
) services.TemplateService {
	return &templateService{
		templates: templates,
		resolver:  resolver,
		locker:    locker,
		bus:       bus,
		logger:    logger,
	}
}

func templateLockKey(id string) string { return "template:" + id }

// CreateTemplate creates a template with version 1
func (s *templateService) CreateTemplate(ctx context.Context, req *services.CreateTemplateRequest) (*models.Template, error) {
	if req.Source == "" {
		req.Source = models.TemplateSourceFirm
	}
	if err := s.validateCreateTemplateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var sharedWith []string
	if len(req.SharedWith) > 0 {
		merged, _, err := s.resolver.Union(ctx, nil, req.SharedWith)
		if err != nil {
			return nil, err
		}
		sharedWith = merged
	}

	now := time.Now().UTC()
	tmpl := &models.Template{
		ID:          "template-" + uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Source:      req.Source,
		Version:     1,
		Versions: []models.TemplateVersion{{
			Version:   1,
			CreatedAt: now,
			Changes:   models.InitialTemplateChanges,
			Content:   req.Content,
		}},
		SharedWith:   sharedWith,
		CreatedAt:    now,
		UpdatedAt:    now,
		VersionStamp: 1,
	}

	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("template created",
		"id", tmpl.ID,
		"name", tmpl.Name,
		"category", tmpl.Category,
		"source", tmpl.Source,
	)

	s.bus.Publish(ctx, events.New(events.TopicTemplateCreated, tmpl.ID, events.TemplatePayload{Template: tmpl.Clone()}))
	return tmpl, nil
}

// GetTemplate retrieves a template with its full version chain
func (s *templateService) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	return s.templates.Get(ctx, id)
}

// ListTemplates returns template summaries
func (s *templateService) ListTemplates(ctx context.Context, filter models.TemplateFilter) ([]models.TemplateSummary, error) {
	templates, err := s.templates.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]models.TemplateSummary, 0, len(templates))
	for i := range templates {
		out = append(out, templates[i].Summary())
	}
	return out, nil
}

// ListVersions returns the version chain, oldest first
func (s *templateService) ListVersions(ctx context.Context, id string) ([]models.TemplateVersion, error) {
	tmpl, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return tmpl.Versions, nil
}

// AppendVersion adds the next version to a template
func (s *templateService) AppendVersion(ctx context.Context, req *services.AppendTemplateVersionRequest) (*models.Template, error) {
	if err := s.validateAppendVersionRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locker.Lock(templateLockKey(req.TemplateID))
	tmpl, err := s.appendVersionLocked(ctx, req)
	unlock()
	if err != nil {
		return nil, err
	}

	latest := tmpl.CurrentVersion()
	s.logger.Info("template version appended",
		"id", tmpl.ID,
		"version", latest.Version,
		"changes", latest.Changes,
	)

	e := events.New(events.TopicTemplateVersionAppended, tmpl.ID, events.TemplatePayload{Template: tmpl.Clone()})
	e.Version = latest.Version
	s.bus.Publish(ctx, e)
	return tmpl, nil
}

func (s *templateService) appendVersionLocked(ctx context.Context, req *services.AppendTemplateVersionRequest) (*models.Template, error) {
	tmpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVersionStamp(tmpl.ID, tmpl.VersionStamp, req.IfMatch); err != nil {
		return nil, err
	}

	_, err = versionchain.AppendTemplateVersion(tmpl, models.TemplateVersion{
		Version: req.Version,
		Changes: strings.TrimSpace(req.Changes),
		Content: req.Content,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Share unions client IDs into the template audience.
// Sharing with clients that already have access changes nothing, including the version stamp.
func (s *templateService) Share(ctx context.Context, req *services.ShareRequest) (*models.Template, error) {
	unlock := s.locker.Lock(templateLockKey(req.ID))
	tmpl, added, err := s.shareLocked(ctx, req)
	unlock()
	if err != nil {
		return nil, err
	}

	if len(added) == 0 {
		return tmpl, nil
	}

	s.logger.Info("template shared", "id", tmpl.ID, "added", added, "shared_with", tmpl.SharedWith)
	s.bus.Publish(ctx, events.New(events.TopicTemplateShared, tmpl.ID, events.TemplatePayload{
		Template: tmpl.Clone(),
		Added:    added,
	}))
	return tmpl, nil
}

func (s *templateService) shareLocked(ctx context.Context, req *services.ShareRequest) (*models.Template, []string, error) {
	tmpl, err := s.templates.Get(ctx, req.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.CheckVersionStamp(tmpl.ID, tmpl.VersionStamp, req.IfMatch); err != nil {
		return nil, nil, err
	}

	merged, added, err := s.resolver.Union(ctx, tmpl.SharedWith, req.ClientIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(added) == 0 {
		return tmpl, nil, nil
	}

	tmpl.SharedWith = merged
	tmpl.UpdatedAt = time.Now().UTC()
	tmpl.VersionStamp++
	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, nil, err
	}
	return tmpl, added, nil
}

// Validation methods

func (s *templateService) validateCreateTemplateRequest(req *services.CreateTemplateRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxTemplateNameLength),
		),
		validation.Field(&req.Category,
			validation.Required,
			validation.Length(1, config.MaxCategoryLength),
		),
		validation.Field(&req.Source, validation.In(models.TemplateSourceFirm, models.TemplateSourceAI)),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxVersionContentLength),
		),
	)
}

func (s *templateService) validateAppendVersionRequest(req *services.AppendTemplateVersionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.TemplateID, validation.Required),
		validation.Field(&req.Version, validation.Min(0)),
		validation.Field(&req.Changes, validation.Required),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxVersionContentLength),
		),
	)
}
