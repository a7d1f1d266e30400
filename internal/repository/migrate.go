package repository

import (
	"embed"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over the embedded migrations.
// databaseURL uses golang-migrate schemes (postgres://, sqlite3://).
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending migrations.
func Migrate(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationCommand runs one migrate CLI verb against m and describes the
// resulting state. Supported verbs: up, down (one step), version, force <n>.
func MigrationCommand(m *migrate.Migrate, verb string, args []string) (string, error) {
	switch verb {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return "", fmt.Errorf("apply migrations: %w", err)
		}
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return "", fmt.Errorf("roll back migration: %w", err)
		}
	case "version":
	case "force":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: force <version>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := m.Force(version); err != nil {
			return "", fmt.Errorf("force version %d: %w", version, err)
		}
	default:
		return "", fmt.Errorf("unknown command %q", verb)
	}
	return describeVersion(m)
}

func describeVersion(m *migrate.Migrate) (string, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return "no migrations applied", nil
	}
	if err != nil {
		return "", fmt.Errorf("read version: %w", err)
	}
	if dirty {
		return fmt.Sprintf("version %d (dirty)", version), nil
	}
	return fmt.Sprintf("version %d", version), nil
}
