// Package alert implements client alerts.
package alert

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

// alertService implements the AlertService interface
type alertService struct {
	alerts   repositories.AlertRepository
	resolver *audience.Resolver
	locker   *versionchain.Locker
	bus      events.Bus
	logger   *slog.Logger
}

// NewAlertService creates a new alert service
func NewAlertService(
	alerts repositories.AlertRepository,
	resolver *audience.Resolver,
	bus events.Bus,
	logger *slog.Logger,
) services.AlertService {
	return &alertService{
		alerts:   alerts,
		resolver: resolver,
		locker:   versionchain.NewLocker(),
		bus:      bus,
		logger:   logger,
	}
}

// CreateAlert stores a draft alert
func (s *alertService) CreateAlert(ctx context.Context, req *services.CreateAlertRequest) (*models.ClientAlert, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateCreateAlertRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	aud, _, err := s.resolver.Union(ctx, nil, req.Audience)
	if err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	alert := &models.ClientAlert{
		ID:           "alert-" + uuid.NewString(),
		Title:        req.Title,
		Summary:      strings.TrimSpace(req.Summary),
		Content:      req.Content,
		Tags:         tags,
		Audience:     aud,
		Status:       models.AlertStatusDraft,
		CreatedAt:    time.Now().UTC(),
		VersionStamp: 1,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("alert drafted", "id", alert.ID, "audience", len(alert.Audience))
	s.bus.Publish(ctx, events.New(events.TopicAlertCreated, alert.ID, events.AlertPayload{Alert: alert.Clone()}))
	return alert, nil
}

// GetAlert retrieves an alert by ID
func (s *alertService) GetAlert(ctx context.Context, id string) (*models.ClientAlert, error) {
	return s.alerts.Get(ctx, id)
}

// ListAlerts lists alerts matching the filter
func (s *alertService) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.ClientAlert, error) {
	return s.alerts.List(ctx, filter)
}

// SetAudience unions client IDs into the audience of a live alert
func (s *alertService) SetAudience(ctx context.Context, req *services.ShareRequest) (*models.ClientAlert, error) {
	var added []string
	alert, err := s.mutate(ctx, req.ID, req.IfMatch, func(a *models.ClientAlert) (bool, error) {
		if a.Status == models.AlertStatusArchived {
			return false, fmt.Errorf("%w: alert %s is archived", domain.ErrInvalidTransition, a.ID)
		}
		merged, newIDs, err := s.resolver.Union(ctx, a.Audience, req.ClientIDs)
		if err != nil {
			return false, err
		}
		a.Audience = merged
		added = newIDs
		return len(newIDs) > 0, nil
	})
	if err != nil || len(added) == 0 {
		return alert, err
	}

	s.logger.Info("alert audience extended", "id", alert.ID, "added", added)
	s.bus.Publish(ctx, events.New(events.TopicAlertAudience, alert.ID, events.AlertPayload{Alert: alert.Clone()}))
	return alert, nil
}

// PublishAlert moves a draft to published
func (s *alertService) PublishAlert(ctx context.Context, id string, ifMatch *int64) (*models.ClientAlert, error) {
	alert, err := s.mutate(ctx, id, ifMatch, func(a *models.ClientAlert) (bool, error) {
		if a.Status != models.AlertStatusDraft {
			return false, fmt.Errorf("%w: alert %s is %s", domain.ErrInvalidTransition, a.ID, a.Status)
		}
		if len(a.Audience) == 0 {
			return false, domain.NewValidation("alert %s has no audience", a.ID)
		}
		now := time.Now().UTC()
		a.Status = models.AlertStatusPublished
		a.PublishedAt = &now
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert published", "id", alert.ID, "audience", alert.Audience)
	s.bus.Publish(ctx, events.New(events.TopicAlertPublished, alert.ID, events.AlertPayload{Alert: alert.Clone()}))
	return alert, nil
}

// ArchiveAlert retires a draft or published alert
func (s *alertService) ArchiveAlert(ctx context.Context, id string, ifMatch *int64) (*models.ClientAlert, error) {
	alert, err := s.mutate(ctx, id, ifMatch, func(a *models.ClientAlert) (bool, error) {
		if a.Status == models.AlertStatusArchived {
			return false, fmt.Errorf("%w: alert %s is already archived", domain.ErrInvalidTransition, a.ID)
		}
		a.Status = models.AlertStatusArchived
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("alert archived", "id", alert.ID)
	s.bus.Publish(ctx, events.New(events.TopicAlertArchived, alert.ID, events.AlertPayload{Alert: alert.Clone()}))
	return alert, nil
}

// RecordEngagement bumps the view or engagement counter
func (s *alertService) RecordEngagement(ctx context.Context, id string, kind models.EngagementKind) (*models.ClientAlert, error) {
	return s.mutate(ctx, id, nil, func(a *models.ClientAlert) (bool, error) {
		if a.Status != models.AlertStatusPublished {
			return false, fmt.Errorf("%w: alert %s is %s", domain.ErrInvalidTransition, a.ID, a.Status)
		}
		switch kind {
		case models.EngagementView:
			a.Views++
		case models.EngagementInteract:
			a.Engagement++
		default:
			return false, domain.NewValidation("unknown engagement kind %q", kind)
		}
		return true, nil
	})
}

// mutate runs fn on the stored alert under its lock.
// fn reports whether it changed anything; unchanged alerts are not written.
func (s *alertService) mutate(ctx context.Context, id string, ifMatch *int64, fn func(*models.ClientAlert) (bool, error)) (*models.ClientAlert, error) {
	unlock := s.locker.Lock(id)
	defer unlock()

	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckVersionStamp(alert.ID, alert.VersionStamp, ifMatch); err != nil {
		return nil, err
	}

	changed, err := fn(alert)
	if err != nil {
		return nil, err
	}
	if !changed {
		return alert, nil
	}

	alert.VersionStamp++
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func validateCreateAlertRequest(req *services.CreateAlertRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxAlertTitleLength),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.Length(1, config.MaxVersionContentLength),
		),
		validation.Field(&req.Audience, validation.Required),
	)
}
