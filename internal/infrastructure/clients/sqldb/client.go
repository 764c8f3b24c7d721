package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/vetclinicdiscovery/pkg/config"
	"github.com/zatekoja/vetclinicdiscovery/pkg/retry"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Client wraps a SQL connection pool together with the goqu dialect of its driver
type Client struct {
	db     *sql.DB
	driver string
	goqu   *goqu.Database
}

// NewClient opens the configured database and pings it with exponential backoff
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open(cfg.Driver, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// a second connection to an in-memory database would see an empty schema
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	err = retry.Do(
		context.Background(),
		retry.DefaultConfig(),
		cfg.Driver,
		func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("retry_in", nextDelay).
				Str("driver", cfg.Driver).
				Msg("database connection attempt failed")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return NewClientFromDB(db, cfg.Driver), nil
}

// NewClientFromDB wraps an already opened pool, e.g. a sqlmock connection
func NewClientFromDB(db *sql.DB, driver string) *Client {
	return &Client{
		db:     db,
		driver: driver,
		goqu:   goqu.New(driver, db),
	}
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the database/sql driver name
func (c *Client) Driver() string {
	return c.driver
}

// Builder returns the goqu database used to render driver-specific SQL
func (c *Client) Builder() *goqu.Database {
	return c.goqu
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// BeginTx starts a new transaction
func (c *Client) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return c.db.BeginTx(ctx, nil)
}

// WithTx runs fn in a transaction, committing on success and rolling back on error
func (c *Client) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
