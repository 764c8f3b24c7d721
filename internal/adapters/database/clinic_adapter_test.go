package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/database"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

func TestClinicAdapter_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := database.NewClinicAdapter(newSQLiteClient(t))

	clinic := newClinic(1, func(c *entities.Clinic) {
		c.EmergencyService = true
		c.Website = "https://clinic1.test"
	})
	require.NoError(t, repo.Create(ctx, clinic))

	got, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, clinic.Name, got.Name)
	assert.Equal(t, clinic.Email, got.Email)
	assert.True(t, got.EmergencyService)
	assert.False(t, got.InpatientCare)
	require.NotNil(t, got.Location)
	assert.InDelta(t, clinic.Location.Latitude, got.Location.Latitude, 1e-9)
	assert.True(t, clinic.CreatedAt.Equal(got.CreatedAt))

	byEmail, err := repo.GetByEmail(ctx, clinic.Email)
	require.NoError(t, err)
	assert.Equal(t, clinic.ID, byEmail.ID)
}

func TestClinicAdapter_NullLocationRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := database.NewClinicAdapter(newSQLiteClient(t))

	clinic := newClinic(1, func(c *entities.Clinic) { c.Location = nil })
	require.NoError(t, repo.Create(ctx, clinic))

	got, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Location)
}

func TestClinicAdapter_DuplicateEmailIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := database.NewClinicAdapter(newSQLiteClient(t))
	mustCreateClinics(t, repo, newClinic(1))

	dup := newClinic(2, func(c *entities.Clinic) { c.Email = "clinic1@vets.test" })
	err := repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestClinicAdapter_GetMissing(t *testing.T) {
	repo := database.NewClinicAdapter(newSQLiteClient(t))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClinicAdapter_UpdateKeepsRating(t *testing.T) {
	ctx := context.Background()
	client := newSQLiteClient(t)
	repo := database.NewClinicAdapter(client)
	reviews := database.NewReviewAdapter(client)

	clinic := newClinic(1)
	mustCreateClinics(t, repo, clinic)
	_, err := reviews.Create(ctx, &entities.Review{
		ID: "r1", ClinicID: clinic.ID, Rating: 4, Text: "Friendly staff", ReviewerName: "Ana", CreatedAt: baseTime,
	})
	require.NoError(t, err)

	// clinic still carries the pre-review rating of 0
	clinic.Name = "Renamed Clinic"
	clinic.PriceRange = "high"
	require.NoError(t, repo.Update(ctx, clinic))

	got, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Clinic", got.Name)
	assert.Equal(t, "high", got.PriceRange)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)
	assert.Equal(t, 1, got.ReviewCount)

	err = repo.Update(ctx, newClinic(9))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClinicAdapter_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	client := newSQLiteClient(t)
	repo := database.NewClinicAdapter(client)
	services := database.NewServiceAdapter(client)
	hours := database.NewWorkingHoursAdapter(client)

	clinic := newClinic(1)
	mustCreateClinics(t, repo, clinic, newClinic(2))
	require.NoError(t, services.Create(ctx, &entities.Service{ID: "s1", ClinicID: clinic.ID, Condition: "dermatology", CreatedAt: baseTime}))
	require.NoError(t, services.Create(ctx, &entities.Service{ID: "s2", ClinicID: "clinic-2", Condition: "surgery", CreatedAt: baseTime}))
	require.NoError(t, hours.Create(ctx, &entities.WorkingHours{ID: "h1", ClinicID: clinic.ID, DayOfWeek: "monday", OpenTime: "09:00", CloseTime: "18:00"}))

	require.NoError(t, repo.Delete(ctx, clinic.ID))

	_, err := repo.GetByID(ctx, clinic.ID)
	assert.True(t, apperrors.IsNotFound(err))

	grouped, err := services.ListByClinics(ctx, nil)
	require.NoError(t, err)
	assert.NotContains(t, grouped, clinic.ID)
	assert.Len(t, grouped["clinic-2"], 1)

	left, err := hours.ListByClinic(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.True(t, apperrors.IsNotFound(repo.Delete(ctx, clinic.ID)))
}

func TestClinicAdapter_ListFilters(t *testing.T) {
	ctx := context.Background()
	client := newSQLiteClient(t)
	repo := database.NewClinicAdapter(client)
	reviews := database.NewReviewAdapter(client)

	mustCreateClinics(t, repo,
		newClinic(1, func(c *entities.Clinic) { c.PriceRange = "low"; c.Name = "Zeta" }),
		newClinic(2, func(c *entities.Clinic) { c.EmergencyService = true; c.Name = "Alpha" }),
		newClinic(3, func(c *entities.Clinic) { c.PriceRange = "low"; c.EmergencyService = true; c.Name = "Mid" }),
	)
	for i, r := range []struct {
		clinic string
		rating int
	}{{"clinic-1", 5}, {"clinic-2", 3}, {"clinic-3", 4}} {
		_, err := reviews.Create(ctx, &entities.Review{
			ID: r.clinic + "-r", ClinicID: r.clinic, Rating: r.rating,
			Text: "Visited with my dog", ReviewerName: "Ivo", CreatedAt: baseTime.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	cases := []struct {
		name   string
		filter repositories.ClinicFilter
		want   []string
	}{
		{"all in creation order", repositories.ClinicFilter{}, []string{"clinic-1", "clinic-2", "clinic-3"}},
		{"price range", repositories.ClinicFilter{PriceRange: "low"}, []string{"clinic-1", "clinic-3"}},
		{"emergency only", repositories.ClinicFilter{EmergencyOnly: true}, []string{"clinic-2", "clinic-3"}},
		{"min rating by rating", repositories.ClinicFilter{MinRating: 4, OrderBy: repositories.OrderByRating}, []string{"clinic-1", "clinic-3"}},
		{"by name", repositories.ClinicFilter{OrderBy: repositories.OrderByName}, []string{"clinic-2", "clinic-3", "clinic-1"}},
		{"ids", repositories.ClinicFilter{IDs: []string{"clinic-3", "clinic-1"}}, []string{"clinic-1", "clinic-3"}},
		{"paged", repositories.ClinicFilter{Limit: 1, Offset: 1}, []string{"clinic-2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clinics, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(clinics))
			for _, c := range clinics {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}
