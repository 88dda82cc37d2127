package services

import (
	"context"

	"lexdesk/internal/domain/models"
)

// AlertService handles client alerts: drafting, audience, publication and engagement.
type AlertService interface {
	CreateAlert(ctx context.Context, req *CreateAlertRequest) (*models.ClientAlert, error)
	GetAlert(ctx context.Context, id string) (*models.ClientAlert, error)
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.ClientAlert, error)

	// SetAudience unions client IDs into the alert's audience. Idempotent.
	SetAudience(ctx context.Context, req *ShareRequest) (*models.ClientAlert, error)

	PublishAlert(ctx context.Context, id string, ifMatch *int64) (*models.ClientAlert, error)
	ArchiveAlert(ctx context.Context, id string, ifMatch *int64) (*models.ClientAlert, error)

	// RecordEngagement increments a counter on a published alert
	RecordEngagement(ctx context.Context, id string, kind models.EngagementKind) (*models.ClientAlert, error)
}

// CreateAlertRequest represents a new client alert
type CreateAlertRequest struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Audience []string `json:"audience"`
}
