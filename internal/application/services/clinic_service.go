package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ListClinicsParams are the directory listing filters
type ListClinicsParams struct {
	PriceRange    string
	EmergencyOnly bool
	Offset        int
	Limit         int
}

// ClinicService handles business logic for the clinic directory
type ClinicService struct {
	clinics  repositories.ClinicRepository
	services repositories.ServiceRepository
	hours    repositories.WorkingHoursRepository
}

// NewClinicService creates a new clinic service
func NewClinicService(
	clinics repositories.ClinicRepository,
	services repositories.ServiceRepository,
	hours repositories.WorkingHoursRepository,
) *ClinicService {
	return &ClinicService{
		clinics:  clinics,
		services: services,
		hours:    hours,
	}
}

// Register validates and stores a new clinic. Emails are unique.
func (s *ClinicService) Register(ctx context.Context, clinic *entities.Clinic) error {
	clinic.Name = strings.TrimSpace(clinic.Name)
	clinic.Email = strings.ToLower(strings.TrimSpace(clinic.Email))
	clinic.Phone = strings.TrimSpace(clinic.Phone)
	clinic.Address = strings.TrimSpace(clinic.Address)
	clinic.PriceRange = strings.ToLower(strings.TrimSpace(clinic.PriceRange))

	if err := validateClinic(clinic); err != nil {
		return err
	}
	if !strings.Contains(clinic.Email, "@") {
		return apperrors.NewValidationError("email must be a valid address")
	}

	existing, err := s.clinics.GetByEmail(ctx, clinic.Email)
	if err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperrors.NewConflictError(fmt.Sprintf("clinic with email %s already exists", clinic.Email))
	}

	now := time.Now().UTC()
	clinic.ID = uuid.New().String()
	clinic.Rating = 0
	clinic.ReviewCount = 0
	clinic.CreatedAt = now
	clinic.UpdatedAt = now

	if err := s.clinics.Create(ctx, clinic); err != nil {
		return err
	}

	log.Info().Str("clinic_id", clinic.ID).Str("name", clinic.Name).Msg("clinic registered")
	return nil
}

// GetByID retrieves a clinic by ID
func (s *ClinicService) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

// Update applies a partial update and returns the stored clinic
func (s *ClinicService) Update(ctx context.Context, id string, update entities.ClinicUpdate) (*entities.Clinic, error) {
	clinic, err := s.clinics.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(clinic)
	clinic.PriceRange = strings.ToLower(strings.TrimSpace(clinic.PriceRange))
	if err := validateClinic(clinic); err != nil {
		return nil, err
	}

	if err := s.clinics.Update(ctx, clinic); err != nil {
		return nil, err
	}
	return clinic, nil
}

// Delete removes a clinic and everything attached to it
func (s *ClinicService) Delete(ctx context.Context, id string) error {
	if err := s.clinics.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("clinic_id", id).Msg("clinic deleted")
	return nil
}

// List retrieves clinics page by page
func (s *ClinicService) List(ctx context.Context, params ListClinicsParams) ([]*entities.Clinic, error) {
	if params.Offset < 0 {
		return nil, apperrors.NewValidationError("skip must not be negative")
	}
	limit := params.Limit
	switch {
	case limit < 0:
		return nil, apperrors.NewValidationError("limit must not be negative")
	case limit == 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	return s.clinics.List(ctx, repositories.ClinicFilter{
		PriceRange:    strings.ToLower(strings.TrimSpace(params.PriceRange)),
		EmergencyOnly: params.EmergencyOnly,
		Limit:         limit,
		Offset:        params.Offset,
	})
}

// AddService attaches a capability row to an existing clinic
func (s *ClinicService) AddService(ctx context.Context, clinicID string, service *entities.Service) error {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return err
	}

	service.Condition = strings.TrimSpace(service.Condition)
	service.Equipment = strings.TrimSpace(service.Equipment)
	service.SpecialFood = strings.TrimSpace(service.SpecialFood)
	for field, v := range map[string]string{
		"condition":    service.Condition,
		"equipment":    service.Equipment,
		"special_food": service.SpecialFood,
	} {
		if utf8.RuneCountInString(v) > 255 {
			return apperrors.NewValidationError(field + " must be at most 255 characters")
		}
	}

	service.ID = uuid.New().String()
	service.ClinicID = clinicID
	service.CreatedAt = time.Now().UTC()

	return s.services.Create(ctx, service)
}

// ListServices retrieves an existing clinic's capability rows
func (s *ClinicService) ListServices(ctx context.Context, clinicID string) ([]*entities.Service, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.services.ListByClinic(ctx, clinicID)
}

// AddWorkingHours records opening hours for one weekday
func (s *ClinicService) AddWorkingHours(ctx context.Context, clinicID string, hours *entities.WorkingHours) error {
	day, ok := entities.NormalizeDayOfWeek(hours.DayOfWeek)
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("invalid day_of_week %q", hours.DayOfWeek))
	}
	hours.DayOfWeek = day

	if !hours.IsClosed {
		open, err := time.Parse("15:04", hours.OpenTime)
		if err != nil {
			return apperrors.NewValidationError("open_time must be HH:MM")
		}
		closing, err := time.Parse("15:04", hours.CloseTime)
		if err != nil {
			return apperrors.NewValidationError("close_time must be HH:MM")
		}
		if !closing.After(open) {
			return apperrors.NewValidationError("close_time must be after open_time")
		}
	}

	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return err
	}

	hours.ID = uuid.New().String()
	hours.ClinicID = clinicID
	return s.hours.Create(ctx, hours)
}

// ListWorkingHours retrieves an existing clinic's opening hours
func (s *ClinicService) ListWorkingHours(ctx context.Context, clinicID string) ([]*entities.WorkingHours, error) {
	if _, err := s.clinics.GetByID(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.hours.ListByClinic(ctx, clinicID)
}

func validateClinic(c *entities.Clinic) error {
	if err := lengthBetween("name", c.Name, 2, 255); err != nil {
		return err
	}
	if err := lengthBetween("phone", c.Phone, 10, 50); err != nil {
		return err
	}
	if err := lengthBetween("address", c.Address, 5, 500); err != nil {
		return err
	}
	if c.PriceRange == "" {
		return apperrors.NewValidationError("price_range is required")
	}
	if c.Location != nil && !c.Location.Valid() {
		return apperrors.NewValidationError("location_lat must be within [-90,90] and location_lon within [-180,180]")
	}
	return nil
}

func lengthBetween(field, v string, min, max int) error {
	n := utf8.RuneCountInString(v)
	if n < min || n > max {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be between %d and %d characters", field, min, max))
	}
	return nil
}
