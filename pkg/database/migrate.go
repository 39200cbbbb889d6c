package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pokeproxy/pkg/config"
	"pokeproxy/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/multierr"
)

const migrationsLockKey = "pokeproxy_migrations_lock"

// RunMigrations applies all pending migrations to the database.
func RunMigrations(cfg *config.Config, db *sql.DB) (err error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.Database.MigrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	// Advisory locks belong to a session, so lock and unlock on the same connection.
	conn, err := db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("could not get a connection for the migration lock: %w", err)
	}
	defer conn.Close()

	// Acquire an advisory lock to prevent concurrent migrations between the api and the worker.
	var lockAcquired bool
	err = conn.QueryRowContext(context.Background(), "SELECT pg_try_advisory_lock(hashtext($1))", migrationsLockKey).Scan(&lockAcquired)
	if err != nil {
		return fmt.Errorf("could not acquire advisory lock: %w", err)
	}

	if !lockAcquired {
		logger.WithModule("database").Info("another process is already running migrations, skipping")
		return nil
	}

	// The lock is released whatever the outcome of the migrations.
	defer func() {
		err = multierr.Append(err, releaseLock(conn))
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func releaseLock(conn *sql.Conn) error {
	var lockReleased bool
	err := conn.QueryRowContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", migrationsLockKey).Scan(&lockReleased)
	if err != nil {
		return fmt.Errorf("could not release advisory lock: %w", err)
	}
	if !lockReleased {
		return errors.New("could not release advisory lock: lock was not held")
	}
	return nil
}
