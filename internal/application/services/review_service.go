package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

// ClinicReviews is a clinic's review list with its aggregate
type ClinicReviews struct {
	ClinicID      string             `json:"clinic_id"`
	AverageRating float64            `json:"average_rating"`
	TotalReviews  int                `json:"total_reviews"`
	Reviews       []*entities.Review `json:"reviews"`
}

// ReviewService handles review submission and listing
type ReviewService struct {
	reviews repositories.ReviewRepository
	clinics repositories.ClinicRepository
	metrics *observability.Metrics
}

// NewReviewService creates a new review service; metrics may be nil
func NewReviewService(reviews repositories.ReviewRepository, clinics repositories.ClinicRepository, metrics *observability.Metrics) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		clinics: clinics,
		metrics: metrics,
	}
}

// Submit validates and stores a review, returning the clinic's new aggregate
// with the average rounded to two decimals.
func (s *ReviewService) Submit(ctx context.Context, clinicID string, review *entities.Review) (*entities.RatingSummary, error) {
	review.Text = strings.TrimSpace(review.Text)
	review.ReviewerName = strings.TrimSpace(review.ReviewerName)

	if review.Rating < 1 || review.Rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5")
	}
	if review.PriceRating != nil && (*review.PriceRating < 1 || *review.PriceRating > 3) {
		return nil, apperrors.NewValidationError("price_rating must be between 1 and 3")
	}
	if err := lengthBetween("text", review.Text, 10, 2000); err != nil {
		return nil, err
	}
	if err := lengthBetween("reviewer_name", review.ReviewerName, 2, 255); err != nil {
		return nil, err
	}

	review.ID = uuid.New().String()
	review.ClinicID = clinicID
	review.CreatedAt = time.Now().UTC()

	summary, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	summary.AverageRating = round2(summary.AverageRating)

	observability.RecordReview(ctx, s.metrics)
	observability.LoggerFromContext(ctx).Info().
		Str("clinic_id", clinicID).
		Int("rating", review.Rating).
		Float64("average_rating", summary.AverageRating).
		Msg("review added")

	return summary, nil
}

// List returns a clinic's reviews newest first
func (s *ReviewService) List(ctx context.Context, clinicID string) (*ClinicReviews, error) {
	clinic, err := s.clinics.GetByID(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	return &ClinicReviews{
		ClinicID:      clinic.ID,
		AverageRating: round2(clinic.Rating),
		TotalReviews:  len(reviews),
		Reviews:       reviews,
	}, nil
}
