package repositories

import (
	"context"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// ServiceRepository defines the interface for clinic service rows
type ServiceRepository interface {
	Create(ctx context.Context, service *entities.Service) error

	// ListByClinic returns the rows of one clinic, oldest first
	ListByClinic(ctx context.Context, clinicID string) ([]*entities.Service, error)

	// ListByClinics groups rows by clinic id. A nil ids slice loads every row.
	ListByClinics(ctx context.Context, clinicIDs []string) (map[string][]*entities.Service, error)

	// ListMatching returns rows whose condition or equipment contains term (case-insensitive)
	ListMatching(ctx context.Context, term string) ([]*entities.Service, error)
}
