package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const servicesTable = "services"

var serviceColumns = []interface{}{
	"id", "clinic_id", "condition", "equipment", "special_food",
	"hotel_cats", "hotel_dogs", "grooming", "wild_animals",
	"surgery", "vaccination", "dental_care", "created_at",
}

// ServiceAdapter implements ServiceRepository
type ServiceAdapter struct {
	client *sqldb.Client
	db     *goqu.Database
}

// NewServiceAdapter creates a new service adapter
func NewServiceAdapter(client *sqldb.Client) repositories.ServiceRepository {
	return &ServiceAdapter{
		client: client,
		db:     client.Builder(),
	}
}

// Create creates a new service row
func (a *ServiceAdapter) Create(ctx context.Context, service *entities.Service) error {
	record := goqu.Record{
		"id":           service.ID,
		"clinic_id":    service.ClinicID,
		"condition":    service.Condition,
		"equipment":    service.Equipment,
		"special_food": service.SpecialFood,
		"hotel_cats":   service.HotelCats,
		"hotel_dogs":   service.HotelDogs,
		"grooming":     service.Grooming,
		"wild_animals": service.WildAnimals,
		"surgery":      service.Surgery,
		"vaccination":  service.Vaccination,
		"dental_care":  service.DentalCare,
		"created_at":   service.CreatedAt,
	}

	query, args, err := a.db.Insert(servicesTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", service.ClinicID))
		}
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("service with id %s already exists", service.ID))
		}
		return apperrors.NewInternalError("failed to create service", err)
	}

	return nil
}

// ListByClinic retrieves the services of one clinic
func (a *ServiceAdapter) ListByClinic(ctx context.Context, clinicID string) ([]*entities.Service, error) {
	return a.query(ctx, a.db.Select(serviceColumns...).
		From(servicesTable).
		Where(goqu.Ex{"clinic_id": clinicID}).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
}

// ListByClinics retrieves services grouped by clinic
func (a *ServiceAdapter) ListByClinics(ctx context.Context, clinicIDs []string) (map[string][]*entities.Service, error) {
	grouped := make(map[string][]*entities.Service)
	if clinicIDs != nil && len(clinicIDs) == 0 {
		return grouped, nil
	}

	ds := a.db.Select(serviceColumns...).From(servicesTable)
	if clinicIDs != nil {
		ds = ds.Where(goqu.Ex{"clinic_id": clinicIDs})
	}

	services, err := a.query(ctx, ds.Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()))
	if err != nil {
		return nil, err
	}

	for _, s := range services {
		grouped[s.ClinicID] = append(grouped[s.ClinicID], s)
	}
	return grouped, nil
}

// ListMatching retrieves services whose condition or equipment contains term
func (a *ServiceAdapter) ListMatching(ctx context.Context, term string) ([]*entities.Service, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"

	return a.query(ctx, a.db.Select(serviceColumns...).
		From(servicesTable).
		Where(goqu.Or(
			goqu.Func("LOWER", goqu.C("condition")).Like(pattern),
			goqu.Func("LOWER", goqu.C("equipment")).Like(pattern),
		)).
		Order(goqu.C("clinic_id").Asc(), goqu.C("created_at").Asc()))
}

func (a *ServiceAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Service, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list services", err)
	}
	defer rows.Close()

	services := make([]*entities.Service, 0)
	for rows.Next() {
		s := &entities.Service{}
		err := rows.Scan(
			&s.ID,
			&s.ClinicID,
			&s.Condition,
			&s.Equipment,
			&s.SpecialFood,
			&s.HotelCats,
			&s.HotelDogs,
			&s.Grooming,
			&s.WildAnimals,
			&s.Surgery,
			&s.Vaccination,
			&s.DentalCare,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan service", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate services", err)
	}

	return services, nil
}
