package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

// fakeStore is an in-memory directory implementing every repository the
// services depend on. Setting err makes every call fail with it.
type fakeStore struct {
	mu       sync.Mutex
	clinics  []*entities.Clinic
	services []*entities.Service
	reviews  []*entities.Review
	hours    []*entities.WorkingHours
	err      error
}

func newFakeStore(clinics ...*entities.Clinic) *fakeStore {
	return &fakeStore{clinics: clinics}
}

func (f *fakeStore) clinicRepo() *fakeClinics   { return &fakeClinics{f} }
func (f *fakeStore) serviceRepo() *fakeServices { return &fakeServices{f} }
func (f *fakeStore) reviewRepo() *fakeReviews   { return &fakeReviews{f} }
func (f *fakeStore) hoursRepo() *fakeHours      { return &fakeHours{f} }

func (f *fakeStore) addServices(clinicID string, rows ...*entities.Service) {
	for i, r := range rows {
		r.ClinicID = clinicID
		if r.ID == "" {
			r.ID = fmt.Sprintf("%s-svc-%d-%d", clinicID, len(f.services), i)
		}
		f.services = append(f.services, r)
	}
}

type fakeClinics struct{ *fakeStore }

func (f *fakeClinics) Create(_ context.Context, clinic *entities.Clinic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, c := range f.clinics {
		if c.ID == clinic.ID || c.Email == clinic.Email {
			return apperrors.NewConflictError("clinic already exists")
		}
	}
	f.clinics = append(f.clinics, clinic)
	return nil
}

func (f *fakeClinics) GetByID(_ context.Context, id string) (*entities.Clinic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.clinics {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
}

func (f *fakeClinics) GetByEmail(_ context.Context, email string) (*entities.Clinic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.clinics {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with email %s not found", email))
}

func (f *fakeClinics) Update(_ context.Context, clinic *entities.Clinic) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, c := range f.clinics {
		if c.ID == clinic.ID {
			cp := *clinic
			f.clinics[i] = &cp
			return nil
		}
	}
	return apperrors.NewNotFoundError("clinic not found")
}

func (f *fakeClinics) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, c := range f.clinics {
		if c.ID == id {
			f.clinics = append(f.clinics[:i], f.clinics[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("clinic not found")
}

func (f *fakeClinics) List(_ context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	out := make([]*entities.Clinic, 0, len(f.clinics))
	for _, c := range f.clinics {
		if filter.IDs != nil && !contains(filter.IDs, c.ID) {
			continue
		}
		if filter.PriceRange != "" && c.PriceRange != filter.PriceRange {
			continue
		}
		if filter.EmergencyOnly && !c.EmergencyService {
			continue
		}
		if c.Rating < filter.MinRating {
			continue
		}
		out = append(out, c)
	}

	if filter.OrderBy == repositories.OrderByRating {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*entities.Clinic{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeServices struct{ *fakeStore }

func (f *fakeServices) Create(_ context.Context, service *entities.Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.services = append(f.services, service)
	return nil
}

func (f *fakeServices) ListByClinic(_ context.Context, clinicID string) ([]*entities.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*entities.Service{}
	for _, s := range f.services {
		if s.ClinicID == clinicID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeServices) ListByClinics(_ context.Context, clinicIDs []string) (map[string][]*entities.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := map[string][]*entities.Service{}
	for _, s := range f.services {
		if clinicIDs == nil || contains(clinicIDs, s.ClinicID) {
			out[s.ClinicID] = append(out[s.ClinicID], s)
		}
	}
	return out, nil
}

func (f *fakeServices) ListMatching(_ context.Context, term string) ([]*entities.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	term = strings.ToLower(term)
	out := []*entities.Service{}
	for _, s := range f.services {
		if strings.Contains(strings.ToLower(s.Condition), term) || strings.Contains(strings.ToLower(s.Equipment), term) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeReviews struct{ *fakeStore }

func (f *fakeReviews) Create(_ context.Context, review *entities.Review) (*entities.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	var clinic *entities.Clinic
	for _, c := range f.clinics {
		if c.ID == review.ClinicID {
			clinic = c
		}
	}
	if clinic == nil {
		return nil, apperrors.NewNotFoundError("clinic not found")
	}

	f.reviews = append(f.reviews, review)
	sum, n := 0, 0
	for _, r := range f.reviews {
		if r.ClinicID == review.ClinicID {
			sum += r.Rating
			n++
		}
	}
	clinic.Rating = float64(sum) / float64(n)
	clinic.ReviewCount = n

	return &entities.RatingSummary{ClinicID: clinic.ID, AverageRating: clinic.Rating, ReviewCount: n}, nil
}

func (f *fakeReviews) ListByClinic(_ context.Context, clinicID string) ([]*entities.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*entities.Review{}
	for i := len(f.reviews) - 1; i >= 0; i-- {
		if f.reviews[i].ClinicID == clinicID {
			out = append(out, f.reviews[i])
		}
	}
	return out, nil
}

type fakeHours struct{ *fakeStore }

func (f *fakeHours) Create(_ context.Context, hours *entities.WorkingHours) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, h := range f.hours {
		if h.ClinicID == hours.ClinicID && h.DayOfWeek == hours.DayOfWeek {
			return apperrors.NewConflictError("working hours already set for " + hours.DayOfWeek)
		}
	}
	f.hours = append(f.hours, hours)
	return nil
}

func (f *fakeHours) ListByClinic(_ context.Context, clinicID string) ([]*entities.WorkingHours, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []*entities.WorkingHours{}
	for _, h := range f.hours {
		if h.ClinicID == clinicID {
			out = append(out, h)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func clinicAt(id, name string, lat, lon float64, mutators ...func(*entities.Clinic)) *entities.Clinic {
	c := &entities.Clinic{
		ID:         id,
		Name:       name,
		Email:      id + "@clinic.test",
		Phone:      "+359888123456",
		Address:    "1 Vitosha Blvd, Sofia",
		Location:   &geo.Point{Latitude: lat, Longitude: lon},
		PriceRange: "med",
	}
	for _, m := range mutators {
		m(c)
	}
	return c
}

func ptr[T any](v T) *T { return &v }
