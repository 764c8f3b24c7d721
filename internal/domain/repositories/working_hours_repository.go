package repositories

import (
	"context"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// WorkingHoursRepository defines the interface for clinic opening hours
type WorkingHoursRepository interface {
	// Create fails with a conflict error when the day already has hours
	Create(ctx context.Context, hours *entities.WorkingHours) error

	ListByClinic(ctx context.Context, clinicID string) ([]*entities.WorkingHours, error)
}
