// Package practice serves the lawyer profile, client directory and dashboard insights.
package practice

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"lexdesk/internal/config"
	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// profileService implements the ProfileService interface
type profileService struct {
	profiles repositories.ProfileRepository
	bus      events.Bus
	logger   *slog.Logger
	mu       sync.Mutex // serializes read-validate-write of the single profile
}

// NewProfileService creates a new profile service
func NewProfileService(profiles repositories.ProfileRepository, bus events.Bus, logger *slog.Logger) services.ProfileService {
	return &profileService{profiles: profiles, bus: bus, logger: logger}
}

func (s *profileService) GetProfile(ctx context.Context) (*models.LawyerProfile, error) {
	return s.profiles.Get(ctx)
}

// UpdateProfile applies the fields present in req and bumps the version stamp.
// A request naming no fields changes nothing. Name cannot be cleared; other fields clear to empty on null.
func (s *profileService) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.LawyerProfile, error) {
	s.mu.Lock()
	profile, changed, err := s.updateLocked(ctx, req)
	s.mu.Unlock()
	if err != nil || !changed {
		return profile, err
	}

	s.logger.Info("profile updated", "id", profile.ID, "version_stamp", profile.VersionStamp)
	snapshot := *profile
	s.bus.Publish(ctx, events.New(events.TopicProfileUpdated, profile.ID, events.ProfilePayload{Profile: &snapshot}))
	return profile, nil
}

func (s *profileService) updateLocked(ctx context.Context, req *models.UpdateProfileRequest) (*models.LawyerProfile, bool, error) {
	profile, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := domain.CheckVersionStamp(profile.ID, profile.VersionStamp, req.IfMatch); err != nil {
		return nil, false, err
	}

	fields := []struct {
		name   string
		field  models.OptionalField
		target *string
	}{
		{"name", req.Name, &profile.Name},
		{"title", req.Title, &profile.Title},
		{"email", req.Email, &profile.Email},
		{"phone", req.Phone, &profile.Phone},
		{"firm_name", req.FirmName, &profile.FirmName},
	}

	changed := false
	for _, f := range fields {
		if !f.field.Present {
			continue
		}
		value := ""
		if f.field.Value != nil {
			value = strings.TrimSpace(*f.field.Value)
		}
		if err := validateProfileField(f.name, value); err != nil {
			return nil, false, err
		}
		*f.target = value
		changed = true
	}

	if !changed {
		return profile, false, nil
	}

	profile.LastUpdated = time.Now().UTC()
	profile.VersionStamp++
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, false, err
	}
	return profile, true, nil
}

func validateProfileField(name, value string) error {
	switch name {
	case "name":
		if value == "" {
			return fmt.Errorf("%w: name: cannot be blank", domain.ErrValidation)
		}
	case "email":
		if value != "" && !emailPattern.MatchString(value) {
			return fmt.Errorf("%w: email: must be a valid email address", domain.ErrValidation)
		}
	}
	if len(value) > config.MaxProfileFieldLength {
		return fmt.Errorf("%w: %s: the length must be no more than %d", domain.ErrValidation, name, config.MaxProfileFieldLength)
	}
	return nil
}
