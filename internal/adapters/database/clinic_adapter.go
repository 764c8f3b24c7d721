package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

const clinicsTable = "clinics"

var clinicColumns = []interface{}{
	"id", "name", "email", "phone", "address", "location_lat", "location_lon",
	"price_range", "rating", "review_count", "description", "website",
	"emergency_service", "inpatient_care", "wild_animals", "created_at", "updated_at",
}

// ClinicAdapter implements the ClinicRepository interface
type ClinicAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
}

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *sqldb.Client) repositories.ClinicRepository {
	return &ClinicAdapter{
		client: client,
		db:     client.Builder(),
	}
}

// Create creates a new clinic
func (a *ClinicAdapter) Create(ctx context.Context, clinic *entities.Clinic) error {
	lat, lon := locationColumns(clinic.Location)
	record := goqu.Record{
		"id":                clinic.ID,
		"name":              clinic.Name,
		"email":             clinic.Email,
		"phone":             clinic.Phone,
		"address":           clinic.Address,
		"location_lat":      lat,
		"location_lon":      lon,
		"price_range":       clinic.PriceRange,
		"rating":            clinic.Rating,
		"review_count":      clinic.ReviewCount,
		"description":       clinic.Description,
		"website":           clinic.Website,
		"emergency_service": clinic.EmergencyService,
		"inpatient_care":    clinic.InpatientCare,
		"wild_animals":      clinic.WildAnimals,
		"created_at":        clinic.CreatedAt,
		"updated_at":        clinic.UpdatedAt,
	}

	query, args, err := a.db.Insert(clinicsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("clinic with id %s or email %s already exists", clinic.ID, clinic.Email))
		}
		return apperrors.NewInternalError("failed to create clinic", err)
	}

	return nil
}

// GetByID retrieves a clinic by ID
func (a *ClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	return a.getByField(ctx, "id", id)
}

// GetByEmail retrieves a clinic by email
func (a *ClinicAdapter) GetByEmail(ctx context.Context, email string) (*entities.Clinic, error) {
	return a.getByField(ctx, "email", email)
}

func (a *ClinicAdapter) getByField(ctx context.Context, field, value string) (*entities.Clinic, error) {
	query, args, err := a.db.Select(clinicColumns...).
		From(clinicsTable).
		Where(goqu.Ex{field: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	clinic, err := scanClinic(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with %s %s not found", field, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic", err)
	}

	return clinic, nil
}

// Update updates a clinic. Rating and review count are owned by the review
// aggregate and are never written here.
func (a *ClinicAdapter) Update(ctx context.Context, clinic *entities.Clinic) error {
	clinic.UpdatedAt = time.Now().UTC()
	lat, lon := locationColumns(clinic.Location)

	query, args, err := a.db.Update(clinicsTable).
		Set(goqu.Record{
			"name":              clinic.Name,
			"phone":             clinic.Phone,
			"address":           clinic.Address,
			"location_lat":      lat,
			"location_lon":      lon,
			"price_range":       clinic.PriceRange,
			"description":       clinic.Description,
			"website":           clinic.Website,
			"emergency_service": clinic.EmergencyService,
			"inpatient_care":    clinic.InpatientCare,
			"wild_animals":      clinic.WildAnimals,
			"updated_at":        clinic.UpdatedAt,
		}).
		Where(goqu.Ex{"id": clinic.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update clinic", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", clinic.ID))
	}

	return nil
}

// Delete removes the clinic and its dependent rows in one transaction
func (a *ClinicAdapter) Delete(ctx context.Context, id string) error {
	return a.client.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{servicesTable, reviewsTable, workingHoursTable} {
			query, args, err := a.db.Delete(table).Where(goqu.Ex{"clinic_id": id}).ToSQL()
			if err != nil {
				return apperrors.NewInternalError("failed to build delete query", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return apperrors.NewInternalError(fmt.Sprintf("failed to delete %s", table), err)
			}
		}

		query, args, err := a.db.Delete(clinicsTable).Where(goqu.Ex{"id": id}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build delete query", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return apperrors.NewInternalError("failed to delete clinic", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewInternalError("failed to get rows affected", err)
		}
		if rowsAffected == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
		}
		return nil
	})
}

// List retrieves clinics with filters
func (a *ClinicAdapter) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	ds := a.db.Select(clinicColumns...).From(clinicsTable)

	var conds []exp.Expression
	if len(filter.IDs) > 0 {
		conds = append(conds, goqu.Ex{"id": filter.IDs})
	}
	if filter.PriceRange != "" {
		conds = append(conds, goqu.Ex{"price_range": filter.PriceRange})
	}
	if filter.EmergencyOnly {
		conds = append(conds, goqu.Ex{"emergency_service": true})
	}
	if filter.MinRating > 0 {
		conds = append(conds, goqu.C("rating").Gte(filter.MinRating))
	}
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}

	switch filter.OrderBy {
	case repositories.OrderByRating:
		ds = ds.Order(goqu.C("rating").Desc(), goqu.C("name").Asc())
	case repositories.OrderByName:
		ds = ds.Order(goqu.C("name").Asc(), goqu.C("id").Asc())
	default:
		ds = ds.Order(goqu.C("created_at").Asc(), goqu.C("id").Asc())
	}

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clinics", err)
	}
	defer rows.Close()

	clinics := make([]*entities.Clinic, 0)
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinic", err)
		}
		clinics = append(clinics, clinic)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate clinics", err)
	}

	return clinics, nil
}

func scanClinic(row rowScanner) (*entities.Clinic, error) {
	clinic := &entities.Clinic{}
	var lat, lon sql.NullFloat64

	err := row.Scan(
		&clinic.ID,
		&clinic.Name,
		&clinic.Email,
		&clinic.Phone,
		&clinic.Address,
		&lat,
		&lon,
		&clinic.PriceRange,
		&clinic.Rating,
		&clinic.ReviewCount,
		&clinic.Description,
		&clinic.Website,
		&clinic.EmergencyService,
		&clinic.InpatientCare,
		&clinic.WildAnimals,
		&clinic.CreatedAt,
		&clinic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		clinic.Location = &geo.Point{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return clinic, nil
}

func locationColumns(loc *geo.Point) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Latitude, Valid: true},
		sql.NullFloat64{Float64: loc.Longitude, Valid: true}
}
