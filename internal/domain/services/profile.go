package services

import (
	"context"

	"lexdesk/internal/domain/models"
)

// ProfileService manages the lawyer profile
type ProfileService interface {
	GetProfile(ctx context.Context) (*models.LawyerProfile, error)
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.LawyerProfile, error)
}

// InsightsService derives dashboard statistics
type InsightsService interface {
	GetInsights(ctx context.Context) (*models.Insights, error)
}

// ClientService exposes the client directory
type ClientService interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
}

// StatusService reports backend component state and entity counts
type StatusService interface {
	Status(ctx context.Context) ([]models.StatusRow, error)
}
