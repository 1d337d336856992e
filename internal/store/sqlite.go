package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	apperrors "aqiclean/internal/errors"
	"aqiclean/internal/files"
	"aqiclean/internal/infrastructure"
	"aqiclean/pkg/contracts/domain"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// insertBatchSize keeps one multi-row INSERT well under SQLite's
// host-parameter limit (9 columns per row).
const insertBatchSize = 500

// ReadingRow is one row of the aqi_readings table
type ReadingRow struct {
	RunID           string  `db:"run_id"`
	City            string  `db:"city"`
	Date            string  `db:"date"`
	AQI             float64 `db:"aqi"`
	AQIBucket       string  `db:"aqi_bucket"`
	Year            int     `db:"year"`
	Month           int     `db:"month"`
	Day             int     `db:"day"`
	GlobalAQIBucket string  `db:"global_aqi_bucket"`
}

func rowFromRecord(runID string, r domain.EnrichedRecord) ReadingRow {
	return ReadingRow{
		RunID:           runID,
		City:            r.City,
		Date:            r.Date.Format(domain.DateLayout),
		AQI:             r.AQI,
		AQIBucket:       string(r.AQIBucket),
		Year:            r.Year,
		Month:           r.Month,
		Day:             r.Day,
		GlobalAQIBucket: string(r.GlobalAQIBucket),
	}
}

// Store mirrors the consolidated table into SQLite
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := files.EnsureDirectory(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(DriverName, path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open database", err)
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("failed to ping database", err)
	}

	s := New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQLite store ready", slog.String("path", path))
	return s, nil
}

// New wraps an already open database
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: infrastructure.WithComponent(logger, "sqlite_store")}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceTable swaps the contents of aqi_readings for table inside one
// transaction. A failed run leaves the previous contents in place.
func (s *Store) ReplaceTable(ctx context.Context, runID string, table domain.ConsolidatedTable) error {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM aqi_readings`); err != nil {
		return apperrors.NewStorageError("failed to clear aqi_readings", err)
	}

	const insert = `
		INSERT INTO aqi_readings (run_id, city, date, aqi, aqi_bucket, year, month, day, global_aqi_bucket)
		VALUES (:run_id, :city, :date, :aqi, :aqi_bucket, :year, :month, :day, :global_aqi_bucket)`

	batch := make([]ReadingRow, 0, insertBatchSize)
	for i, r := range table {
		batch = append(batch, rowFromRecord(runID, r))
		if len(batch) == insertBatchSize || i == len(table)-1 {
			if _, err := tx.NamedExecContext(ctx, insert, batch); err != nil {
				return apperrors.NewStorageError("failed to insert readings", err).
					WithContext("offset", i+1-len(batch))
			}
			batch = batch[:0]
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO aqi_runs (run_id, row_count, finished_at) VALUES (?, ?, ?)`,
		runID, len(table), time.Now().UTC(),
	); err != nil {
		return apperrors.NewStorageError("failed to record run", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("failed to commit readings", err)
	}

	s.logger.Info("Mirrored table to SQLite",
		slog.String("run_id", runID),
		slog.Int("rows", len(table)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Readings returns the stored rows for city ordered by date. An empty city
// returns every row ordered by city then date.
func (s *Store) Readings(ctx context.Context, city string) ([]ReadingRow, error) {
	var rows []ReadingRow
	var err error
	if city == "" {
		err = s.db.SelectContext(ctx, &rows, `SELECT run_id, city, date, aqi, aqi_bucket, year, month, day, global_aqi_bucket FROM aqi_readings ORDER BY city, date, id`)
	} else {
		err = s.db.SelectContext(ctx, &rows, `SELECT run_id, city, date, aqi, aqi_bucket, year, month, day, global_aqi_bucket FROM aqi_readings WHERE city = ? ORDER BY date, id`, city)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to query readings", err)
	}
	return rows, nil
}

// RunCount returns how many runs have been mirrored
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM aqi_runs`); err != nil {
		return 0, apperrors.NewStorageError("failed to count runs", err)
	}
	return n, nil
}
