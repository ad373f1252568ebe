package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrator применяет встроенные миграции к Postgres или SQLite.
type Migrator struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// NewPostgresMigrator создает Migrator поверх пула pgx.
func NewPostgresMigrator(pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:      stdlib.OpenDBFromPool(pool),
		dialect: "postgres",
		logger:  logger.Named("Migrator"),
	}
}

// NewSQLiteMigrator создает Migrator для открытой базы SQLite.
func NewSQLiteMigrator(db *sql.DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:      db,
		dialect: "sqlite",
		logger:  logger.Named("Migrator"),
	}
}

// Up применяет все доступные миграции.
func (m *Migrator) Up() error {
	migrator, err := m.createMigrator()
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	m.logger.Info("Database migrations applied successfully", zap.String("dialect", m.dialect))
	return nil
}

// Down откатывает все миграции.
func (m *Migrator) Down() error {
	migrator, err := m.createMigrator()
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	m.logger.Info("Database migrations rolled back", zap.String("dialect", m.dialect))
	return nil
}

// Version возвращает текущую версию схемы.
func (m *Migrator) Version() (uint, bool, error) {
	migrator, err := m.createMigrator()
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrator: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// createMigrator не закрывает migrate.Migrate: Close закрыл бы и общий *sql.DB.
func (m *Migrator) createMigrator() (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch m.dialect {
	case "postgres":
		driver, err = postgres.WithInstance(m.db, &postgres.Config{
			MigrationsTable:       migrationsTable,
			MigrationsTableQuoted: true,
		})
	case "sqlite":
		driver, err = sqlite.WithInstance(m.db, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", m.dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", m.dialect, err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+m.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, m.dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	migrator.LockTimeout = 30 * time.Second

	return migrator, nil
}
