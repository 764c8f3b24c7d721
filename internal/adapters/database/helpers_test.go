package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/repositories"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/migrations"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// newSQLiteClient returns a migrated, private in-memory database
func newSQLiteClient(t *testing.T) *sqldb.Client {
	t.Helper()

	cfg := &config.DatabaseConfig{Driver: sqldb.DriverSQLite, SQLitePath: ":memory:"}
	client, err := sqldb.NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, migrations.Up(client, cfg))
	return client
}

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newClinic(n int, mutate ...func(*entities.Clinic)) *entities.Clinic {
	c := &entities.Clinic{
		ID:         fmt.Sprintf("clinic-%d", n),
		Name:       fmt.Sprintf("Clinic %d", n),
		Email:      fmt.Sprintf("clinic%d@vets.test", n),
		Phone:      "+359 2 555 0100",
		Address:    fmt.Sprintf("%d Vitosha Blvd, Sofia", n),
		Location:   &geo.Point{Latitude: 42.69 + float64(n)/100, Longitude: 23.32},
		PriceRange: "med",
		CreatedAt:  baseTime.Add(time.Duration(n) * time.Minute),
		UpdatedAt:  baseTime.Add(time.Duration(n) * time.Minute),
	}
	for _, m := range mutate {
		m(c)
	}
	return c
}

func mustCreateClinics(t *testing.T, repo repositories.ClinicRepository, clinics ...*entities.Clinic) {
	t.Helper()
	for _, c := range clinics {
		require.NoError(t, repo.Create(context.Background(), c))
	}
}
