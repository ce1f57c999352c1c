package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrate applies the embedded up migrations not yet recorded in
// schema_migrations. It borrows connections from pool, so no second DSN is
// needed.
func Migrate(pool *pgxpool.Pool, log zerolog.Logger) error {
	src, err := migrationSource()
	if err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{MigrationsTable: migrationsTable})
	if err != nil {
		db.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("migrate init: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("close migrator")
		}
	}()
	m.Log = migrateLogger{log: log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("database schema up to date")
	return nil
}

func migrationSource() (source.Driver, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	return src, nil
}

// migrateLogger sends migrate's progress lines to zerolog at debug level.
type migrateLogger struct {
	log zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.log.GetLevel() <= zerolog.DebugLevel
}
