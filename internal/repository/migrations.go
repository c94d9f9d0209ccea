package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// RunMigrations applies the embedded postgres migrations to databaseURL.
func RunMigrations(databaseURL string) error {
	source, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	return migrateUp(m)
}

// migrateUp applies pending migrations. A dirty version left by a crashed run
// is forced back to the previous version and retried once.
func migrateUp(m *migrate.Migrate) error {
	err := m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	var dirtyErr migrate.ErrDirty
	if !errors.As(err, &dirtyErr) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil {
		return fmt.Errorf("get current migration version: %w", verr)
	}
	if !dirty {
		return fmt.Errorf("dirty migrations at version %d and could not auto-fix", dirtyErr.Version)
	}

	forceVersion := max(int(version)-1, -1)
	if err := m.Force(forceVersion); err != nil {
		return fmt.Errorf("force clean migration version %d: %w", forceVersion, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rerun migrations after dirty state: %w", err)
	}

	return nil
}
