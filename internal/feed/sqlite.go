package feed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/speedwagon-io/openseat/internal/lib/logger/sl"
	"github.com/speedwagon-io/openseat/internal/model"
)

// SQLiteSource serves feed records from a local readings table.
type SQLiteSource struct {
	log *slog.Logger
	db  *sql.DB
	loc *time.Location
}

// NewSQLiteSource opens dbPath. loc applies to zone-less timestamps in seed files.
func NewSQLiteSource(log *slog.Logger, dbPath string, loc *time.Location) (*SQLiteSource, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	src := &SQLiteSource{
		log: log,
		db:  db,
		loc: loc,
	}

	if err := src.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return src, nil
}

func (s *SQLiteSource) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			busyness REAL NOT NULL DEFAULT 0,
			floor TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_readings_timestamp ON readings(timestamp);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteSource) Name() string {
	return "sqlite"
}

func (s *SQLiteSource) Load(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, busyness, floor FROM readings ORDER BY timestamp ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query readings: %v", ErrFeedUnavailable, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			timestampStr, floor string
			busyness            float64
		)

		if err := rows.Scan(&timestampStr, &busyness, &floor); err != nil {
			return nil, fmt.Errorf("%w: failed to scan reading: %v", ErrFeedUnavailable, err)
		}

		timestamp, err := time.Parse(time.RFC3339Nano, timestampStr)
		if err != nil {
			s.log.Error("failed to parse timestamp", slog.String("timestamp", timestampStr), sl.Err(err))
			return nil, fmt.Errorf("%w: stored timestamp %q: %v", ErrFeedUnavailable, timestampStr, err)
		}

		records = append(records, model.Record{
			Timestamp: timestamp,
			Busyness:  busyness,
			Floor:     floor,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no readings stored", ErrFeedUnavailable)
	}

	return records, nil
}

// Store appends records in a single transaction.
func (s *SQLiteSource) Store(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertReadings(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Debug("readings stored", slog.Int("count", len(records)))
	return nil
}

func insertReadings(ctx context.Context, tx *sql.Tx, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO readings (timestamp, busyness, floor) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Busyness, r.Floor); err != nil {
			return fmt.Errorf("failed to insert reading %d: %w", i, err)
		}
	}
	return nil
}

// Seed imports a schema v1 feed file, replacing whatever was stored before.
// The table is left untouched when any insert fails.
func (s *SQLiteSource) Seed(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	records, err := Decode(data, s.loc)
	if err != nil {
		return 0, err
	}

	return s.replace(ctx, records, path)
}

func (s *SQLiteSource) replace(ctx context.Context, records []model.Record, path string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM readings"); err != nil {
		return 0, fmt.Errorf("failed to clear readings: %w", err)
	}

	if err := insertReadings(ctx, tx, records); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("readings seeded", slog.String("path", path), slog.Int("count", len(records)))
	return len(records), nil
}

func (s *SQLiteSource) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM readings").Scan(&count)
	return count, err
}

func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
