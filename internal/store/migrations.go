package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "aqiclean/internal/errors"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS aqi_readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    city TEXT NOT NULL,
    date TEXT NOT NULL,
    aqi REAL NOT NULL,
    aqi_bucket TEXT NOT NULL,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL,
    day INTEGER NOT NULL,
    global_aqi_bucket TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_aqi_readings_city_date ON aqi_readings(city, date);

CREATE TABLE IF NOT EXISTS aqi_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    finished_at DATETIME NOT NULL
);
`,
	},
}

// Migrate applies every migration not yet recorded in schema_migrations
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return apperrors.NewStorageError("ensure migrations table", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return apperrors.NewStorageError("get applied migrations", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		s.logger.Info("Applying migration",
			slog.Int("version", m.Version),
			slog.String("description", m.Description))

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("begin tx for migration %d", m.Version), err)
		}

		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			tx.Rollback()
			return apperrors.NewStorageError(fmt.Sprintf("execute migration %d", m.Version), err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return apperrors.NewStorageError(fmt.Sprintf("record migration %d", m.Version), err)
		}

		if err := tx.Commit(); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("commit migration %d", m.Version), err)
		}
	}

	return nil
}

func (s *Store) ensureMigrationsTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME NOT NULL
		)
	`)
	return err
}

func (s *Store) appliedMigrations(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := s.db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return nil, err
	}
	applied := make(map[int]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// MigrationVersion returns the highest applied migration, or 0
func (s *Store) MigrationVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.GetContext(ctx, &version, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	return version, err
}
