package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const workingHoursTable = "working_hours"

// WorkingHoursAdapter implements WorkingHoursRepository
type WorkingHoursAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
}

// NewWorkingHoursAdapter creates a new working hours adapter
func NewWorkingHoursAdapter(client *sqldb.Client) repositories.WorkingHoursRepository {
	return &WorkingHoursAdapter{
		client: client,
		db:     client.Builder(),
	}
}

// Create stores hours for a day that has none yet
func (a *WorkingHoursAdapter) Create(ctx context.Context, hours *entities.WorkingHours) error {
	conflict := apperrors.NewConflictError(fmt.Sprintf("working hours for %s already exist", hours.DayOfWeek))

	return a.client.WithTx(ctx, func(tx *sql.Tx) error {
		query, args, err := a.db.Select(goqu.COUNT(goqu.Star())).
			From(workingHoursTable).
			Where(goqu.Ex{"clinic_id": hours.ClinicID, "day_of_week": hours.DayOfWeek}).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build query", err)
		}
		var existing int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&existing); err != nil {
			return apperrors.NewInternalError("failed to check working hours", err)
		}
		if existing > 0 {
			return conflict
		}

		query, args, err = a.db.Insert(workingHoursTable).Rows(goqu.Record{
			"id":          hours.ID,
			"clinic_id":   hours.ClinicID,
			"day_of_week": hours.DayOfWeek,
			"open_time":   hours.OpenTime,
			"close_time":  hours.CloseTime,
			"is_closed":   hours.IsClosed,
		}).ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build insert query", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			switch {
			case isUniqueViolation(err):
				return conflict
			case isForeignKeyViolation(err):
				return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", hours.ClinicID))
			}
			return apperrors.NewInternalError("failed to create working hours", err)
		}
		return nil
	})
}

// ListByClinic retrieves a clinic's hours ordered Monday to Sunday
func (a *WorkingHoursAdapter) ListByClinic(ctx context.Context, clinicID string) ([]*entities.WorkingHours, error) {
	query, args, err := a.db.Select("id", "clinic_id", "day_of_week", "open_time", "close_time", "is_closed").
		From(workingHoursTable).
		Where(goqu.Ex{"clinic_id": clinicID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list working hours", err)
	}
	defer rows.Close()

	hours := make([]*entities.WorkingHours, 0, 7)
	for rows.Next() {
		h := &entities.WorkingHours{}
		if err := rows.Scan(&h.ID, &h.ClinicID, &h.DayOfWeek, &h.OpenTime, &h.CloseTime, &h.IsClosed); err != nil {
			return nil, apperrors.NewInternalError("failed to scan working hours", err)
		}
		hours = append(hours, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate working hours", err)
	}

	sort.SliceStable(hours, func(i, j int) bool {
		return entities.WeekdayIndex(hours[i].DayOfWeek) < entities.WeekdayIndex(hours[j].DayOfWeek)
	})
	return hours, nil
}
