// Package migrations applies the embedded schema with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/vetclinicdiscovery/internal/infrastructure/clients/sqldb"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// Up applies every pending migration for the configured driver
func Up(client *sqldb.Client, cfg *config.DatabaseConfig) error {
	sourceDriver, err := iofs.New(migrationFS, "sql")
	if err != nil {
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	var m *migrate.Migrate
	closeAfter := false
	switch client.Driver() {
	case sqldb.DriverSQLite:
		// reuse the client's connection; an in-memory database is per connection
		dbDriver, err := sqlite3.WithInstance(client.DB(), &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("failed to create sqlite migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", sourceDriver, sqldb.DriverSQLite, dbDriver)
		if err != nil {
			return fmt.Errorf("failed to initialize migrate instance: %w", err)
		}
	default:
		m, err = migrate.NewWithSourceInstance("iofs", sourceDriver, cfg.MigrationURL())
		if err != nil {
			return fmt.Errorf("failed to initialize migrate instance: %w", err)
		}
		closeAfter = true
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("could not determine migration version")
	case dirty:
		return fmt.Errorf("database migration state is dirty at version %d", version)
	default:
		log.Info().Uint("version", version).Str("driver", client.Driver()).Msg("database migrations applied")
	}

	// Close on the sqlite path would close the shared *sql.DB
	if closeAfter {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Warn().Err(srcErr).Msg("error closing migration source")
		}
		if dbErr != nil {
			log.Warn().Err(dbErr).Msg("error closing migration database connection")
		}
	}

	return nil
}
