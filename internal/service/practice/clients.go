package practice

import (
	"context"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
)

type clientService struct {
	clients repositories.ClientRepository
}

// NewClientService creates a read-only view of the client directory
func NewClientService(clients repositories.ClientRepository) services.ClientService {
	return &clientService{clients: clients}
}

func (s *clientService) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx)
}

func (s *clientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return s.clients.Get(ctx, id)
}
