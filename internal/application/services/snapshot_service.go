package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

const snapshotLoadConcurrency = 8

// SnapshotService exports and restores the whole directory as one document
type SnapshotService struct {
	clinics  repositories.ClinicRepository
	services repositories.ServiceRepository
	reviews  repositories.ReviewRepository
	hours    repositories.WorkingHoursRepository
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService(
	clinics repositories.ClinicRepository,
	services repositories.ServiceRepository,
	reviews repositories.ReviewRepository,
	hours repositories.WorkingHoursRepository,
) *SnapshotService {
	return &SnapshotService{
		clinics:  clinics,
		services: services,
		reviews:  reviews,
		hours:    hours,
	}
}

// Export returns every clinic with its services, reviews and working hours
func (s *SnapshotService) Export(ctx context.Context) (*entities.Snapshot, error) {
	clinics, err := s.clinics.List(ctx, repositories.ClinicFilter{})
	if err != nil {
		return nil, err
	}
	servicesByClinic, err := s.services.ListByClinics(ctx, nil)
	if err != nil {
		return nil, err
	}

	records := make([]entities.ClinicRecord, len(clinics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotLoadConcurrency)
	for i, c := range clinics {
		g.Go(func() error {
			reviews, err := s.reviews.ListByClinic(gctx, c.ID)
			if err != nil {
				return err
			}
			hours, err := s.hours.ListByClinic(gctx, c.ID)
			if err != nil {
				return err
			}
			services := servicesByClinic[c.ID]
			if services == nil {
				services = []*entities.Service{}
			}
			records[i] = entities.ClinicRecord{
				Clinic:       c,
				Services:     services,
				Reviews:      reviews,
				WorkingHours: hours,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &entities.Snapshot{
		Version:    entities.SnapshotFormatVersion,
		ExportedAt: time.Now().UTC(),
		Clinics:    records,
	}, nil
}

// Import restores a snapshot. Clinics whose id or email already exists are
// skipped, never overwritten. Failures on one record do not stop the others.
func (s *SnapshotService) Import(ctx context.Context, snapshot *entities.Snapshot) (*entities.ImportReport, error) {
	if snapshot == nil {
		return nil, apperrors.NewValidationError("snapshot is required")
	}
	if snapshot.Version != entities.SnapshotFormatVersion {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"unsupported snapshot version %d (want %d)", snapshot.Version, entities.SnapshotFormatVersion))
	}

	report := &entities.ImportReport{Errors: []string{}}
	for i, record := range snapshot.Clinics {
		if record.Clinic == nil || record.Clinic.ID == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("record %d: clinic id is required", i))
			continue
		}

		exists, err := s.exists(ctx, record.Clinic)
		if err != nil {
			return nil, err
		}
		if exists {
			report.Skipped++
			continue
		}

		if err := s.restore(ctx, record); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("clinic %s: %v", record.Clinic.ID, err))
			continue
		}
		report.Imported++
	}

	log.Info().
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("errors", len(report.Errors)).
		Msg("snapshot imported")

	return report, nil
}

func (s *SnapshotService) exists(ctx context.Context, clinic *entities.Clinic) (bool, error) {
	if _, err := s.clinics.GetByID(ctx, clinic.ID); err == nil {
		return true, nil
	} else if !apperrors.IsNotFound(err) {
		return false, err
	}

	if clinic.Email == "" {
		return false, nil
	}
	if _, err := s.clinics.GetByEmail(ctx, clinic.Email); err == nil {
		return true, nil
	} else if !apperrors.IsNotFound(err) {
		return false, err
	}
	return false, nil
}

// restore writes the clinic first, then its children. Reviews go through the
// review repository so the stored aggregate is recomputed from them.
func (s *SnapshotService) restore(ctx context.Context, record entities.ClinicRecord) error {
	clinic := record.Clinic
	now := time.Now().UTC()
	if clinic.CreatedAt.IsZero() {
		clinic.CreatedAt = now
	}
	if clinic.UpdatedAt.IsZero() {
		clinic.UpdatedAt = now
	}
	if err := s.clinics.Create(ctx, clinic); err != nil {
		return err
	}

	for _, svc := range record.Services {
		svc.ClinicID = clinic.ID
		if svc.ID == "" {
			svc.ID = uuid.New().String()
		}
		if svc.CreatedAt.IsZero() {
			svc.CreatedAt = now
		}
		if err := s.services.Create(ctx, svc); err != nil {
			return err
		}
	}
	for _, r := range record.Reviews {
		r.ClinicID = clinic.ID
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if _, err := s.reviews.Create(ctx, r); err != nil {
			return err
		}
	}
	for _, h := range record.WorkingHours {
		h.ClinicID = clinic.ID
		if h.ID == "" {
			h.ID = uuid.New().String()
		}
		if err := s.hours.Create(ctx, h); err != nil {
			return err
		}
	}
	return nil
}
