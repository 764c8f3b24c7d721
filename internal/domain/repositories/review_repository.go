package repositories

import (
	"context"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations.
type ReviewRepository interface {
	// Create inserts the review and recomputes the clinic's rating and review
	// count in the same transaction.
	Create(ctx context.Context, review *entities.Review) (*entities.RatingSummary, error)

	// ListByClinic returns reviews newest first
	ListByClinic(ctx context.Context, clinicID string) ([]*entities.Review, error)
}
