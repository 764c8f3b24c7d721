package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/cache"
	"github.com/zatekoja/vetclinicdiscovery/internal/adapters/database"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
)

type mockClinicRepository struct {
	mock.Mock
}

func (m *mockClinicRepository) Create(ctx context.Context, clinic *entities.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *mockClinicRepository) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*entities.Clinic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClinicRepository) GetByEmail(ctx context.Context, email string) (*entities.Clinic, error) {
	args := m.Called(ctx, email)
	if c := args.Get(0); c != nil {
		return c.(*entities.Clinic), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClinicRepository) Update(ctx context.Context, clinic *entities.Clinic) error {
	return m.Called(ctx, clinic).Error(0)
}

func (m *mockClinicRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockClinicRepository) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Clinic), args.Error(1)
}

func TestCachedClinicAdapter_GetByIDReadsThrough(t *testing.T) {
	ctx := context.Background()
	inner := new(mockClinicRepository)
	clinic := newClinic(1)
	inner.On("GetByID", ctx, clinic.ID).Return(clinic, nil).Once()

	repo := database.NewCachedClinicAdapter(inner, cache.NewMemoryAdapter(time.Minute), 60, nil)

	first, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, clinic.Location, second.Location)
	inner.AssertExpectations(t)
}

func TestCachedClinicAdapter_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := new(mockClinicRepository)
	clinic := newClinic(1)
	renamed := newClinic(1, func(c *entities.Clinic) { c.Name = "Renamed" })

	inner.On("GetByID", ctx, clinic.ID).Return(clinic, nil).Once()
	inner.On("Update", ctx, renamed).Return(nil).Once()
	inner.On("GetByID", ctx, clinic.ID).Return(renamed, nil).Once()

	repo := database.NewCachedClinicAdapter(inner, cache.NewMemoryAdapter(time.Minute), 60, nil)

	_, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, renamed))

	got, err := repo.GetByID(ctx, clinic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	inner.AssertExpectations(t)
}

func TestCachedReviewAdapter_RefreshesClinicLists(t *testing.T) {
	ctx := context.Background()
	client := newSQLiteClient(t)
	clinics := database.NewCachedClinicAdapter(database.NewClinicAdapter(client), cache.NewMemoryAdapter(time.Minute), 60, nil)
	reviews := database.NewCachedReviewAdapter(database.NewReviewAdapter(client), clinics)
	mustCreateClinics(t, clinics, newClinic(1))

	before, err := clinics.List(ctx, repositories.ClinicFilter{})
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Zero(t, before[0].Rating)

	_, err = reviews.Create(ctx, &entities.Review{
		ID: "r1", ClinicID: "clinic-1", Rating: 3, Text: "Average experience", ReviewerName: "Kalin", CreatedAt: baseTime,
	})
	require.NoError(t, err)

	after, err := clinics.List(ctx, repositories.ClinicFilter{})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, after[0].Rating, 1e-9)
}
