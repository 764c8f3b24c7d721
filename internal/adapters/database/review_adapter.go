package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const reviewsTable = "reviews"

// ReviewAdapter implements ReviewRepository
type ReviewAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *sqldb.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     client.Builder(),
	}
}

// Create inserts the review and refreshes the clinic aggregate atomically
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) (*entities.RatingSummary, error) {
	summary := &entities.RatingSummary{ClinicID: review.ClinicID}

	err := a.client.WithTx(ctx, func(tx *sql.Tx) error {
		query, args, err := a.db.Select("id").From(clinicsTable).Where(goqu.Ex{"id": review.ClinicID}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build query", err)
		}
		var id string
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", review.ClinicID))
			}
			return apperrors.NewInternalError("failed to get clinic", err)
		}

		priceRating := sql.NullInt64{}
		if review.PriceRating != nil {
			priceRating = sql.NullInt64{Int64: int64(*review.PriceRating), Valid: true}
		}
		query, args, err = a.db.Insert(reviewsTable).Rows(goqu.Record{
			"id":            review.ID,
			"clinic_id":     review.ClinicID,
			"rating":        review.Rating,
			"price_rating":  priceRating,
			"text":          review.Text,
			"reviewer_name": review.ReviewerName,
			"created_at":    review.CreatedAt,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to create review", err)
		}

		query, args, err = a.db.Select(
			goqu.COALESCE(goqu.AVG("rating"), 0),
			goqu.COUNT(goqu.Star()),
		).From(reviewsTable).Where(goqu.Ex{"clinic_id": review.ClinicID}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build aggregate query", err)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&summary.AverageRating, &summary.ReviewCount); err != nil {
			return apperrors.NewInternalError("failed to aggregate reviews", err)
		}

		query, args, err = a.db.Update(clinicsTable).
			Set(goqu.Record{
				"rating":       summary.AverageRating,
				"review_count": summary.ReviewCount,
			}).
			Where(goqu.Ex{"id": review.ClinicID}).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build update query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewInternalError("failed to update clinic rating", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// ListByClinic retrieves a clinic's reviews, newest first
func (a *ReviewAdapter) ListByClinic(ctx context.Context, clinicID string) ([]*entities.Review, error) {
	query, args, err := a.db.Select(
		"id", "clinic_id", "rating", "price_rating", "text", "reviewer_name", "created_at",
	).From(reviewsTable).
		Where(goqu.Ex{"clinic_id": clinicID}).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := make([]*entities.Review, 0)
	for rows.Next() {
		r := &entities.Review{}
		var priceRating sql.NullInt64
		if err := rows.Scan(&r.ID, &r.ClinicID, &r.Rating, &priceRating, &r.Text, &r.ReviewerName, &r.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		if priceRating.Valid {
			v := int(priceRating.Int64)
			r.PriceRating = &v
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate reviews", err)
	}

	return reviews, nil
}
