// Package database implements the Postgres-backed parking store.
//
// Two tables are maintained:
//   - parking_spaces: one row per annotated space with its current flag
//   - parking_history: append-only log of status transitions
//
// Example usage:
//
//	repo, err := NewPostgresRepo(connStr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
//	spaces, err := repo.ListSpaces(ctx)
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/lotwatch/lotwatch/internal/models"
)

// SpaceRepository defines the storage operations for parking spaces.
type SpaceRepository interface {
	// InitSpaces seeds the spaces table from the lot layout. It is a
	// no-op when rows already exist, matching first-boot semantics.
	InitSpaces(ctx context.Context, ids []int) error

	// ListSpaces returns every space ordered by ascending ID.
	ListSpaces(ctx context.Context) ([]models.ParkingSpace, error)

	// ListAvailable returns the unoccupied spaces ordered by ascending ID.
	ListAvailable(ctx context.Context) ([]models.ParkingSpace, error)

	// ApplyStatus writes a full occupancy snapshot in one transaction.
	// Only rows whose flag actually changed are updated, and each change
	// appends a history entry. Returns the number of changed spaces.
	ApplyStatus(ctx context.Context, status map[int]bool) (int, error)

	// History returns recent transitions newest-first, optionally
	// filtered to one space. spaceID < 0 means no filter.
	History(ctx context.Context, spaceID int, limit int) ([]models.HistoryEntry, error)

	// Ping verifies connectivity, for health checks.
	Ping(ctx context.Context) error

	// Close releases any resources held by the repository.
	Close() error
}

// PostgresRepo implements SpaceRepository on database/sql with lib/pq.
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo opens the connection pool, verifies connectivity and
// creates the schema when missing.
func NewPostgresRepo(connStr string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	repo := &PostgresRepo{db: db}
	if err := repo.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *PostgresRepo) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS parking_spaces (
			space_id INTEGER PRIMARY KEY,
			is_occupied BOOLEAN NOT NULL DEFAULT FALSE,
			last_updated TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS parking_history (
			id SERIAL PRIMARY KEY,
			space_id INTEGER NOT NULL,
			occupied BOOLEAN NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS parking_history_space_idx
			ON parking_history (space_id, timestamp DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepo) InitSpaces(ctx context.Context, ids []int) error {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parking_spaces").Scan(&count); err != nil {
		return fmt.Errorf("failed to count spaces: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // rollback if not committed

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO parking_spaces (space_id, is_occupied)
        VALUES ($1, FALSE)
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("failed to insert space %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresRepo) ListSpaces(ctx context.Context) ([]models.ParkingSpace, error) {
	return r.listSpaces(ctx, `
        SELECT space_id, is_occupied, last_updated
        FROM parking_spaces
        ORDER BY space_id
    `)
}

func (r *PostgresRepo) ListAvailable(ctx context.Context) ([]models.ParkingSpace, error) {
	return r.listSpaces(ctx, `
        SELECT space_id, is_occupied, last_updated
        FROM parking_spaces
        WHERE NOT is_occupied
        ORDER BY space_id
    `)
}

func (r *PostgresRepo) listSpaces(ctx context.Context, query string) ([]models.ParkingSpace, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []models.ParkingSpace
	for rows.Next() {
		var s models.ParkingSpace
		var updated sql.NullTime
		if err := rows.Scan(&s.ID, &s.Occupied, &updated); err != nil {
			return nil, err
		}
		if updated.Valid {
			t := updated.Time
			s.LastUpdated = &t
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

// ApplyStatus mirrors the detector's write path: the update and its history
// entry either both land or neither does.
func (r *PostgresRepo) ApplyStatus(ctx context.Context, status map[int]bool) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	update, err := tx.PrepareContext(ctx, `
        UPDATE parking_spaces
        SET is_occupied = $2, last_updated = NOW()
        WHERE space_id = $1 AND is_occupied <> $2
    `)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare update: %w", err)
	}
	defer update.Close()

	record, err := tx.PrepareContext(ctx, `
        INSERT INTO parking_history (space_id, occupied)
        VALUES ($1, $2)
    `)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer record.Close()

	changed := 0
	for id, occupied := range status {
		res, err := update.ExecContext(ctx, id, occupied)
		if err != nil {
			return 0, fmt.Errorf("failed to update space %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		if _, err := record.ExecContext(ctx, id, occupied); err != nil {
			return 0, fmt.Errorf("failed to record history for space %d: %w", id, err)
		}
		changed++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return changed, nil
}

func (r *PostgresRepo) History(ctx context.Context, spaceID int, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT space_id, occupied, timestamp
        FROM parking_history
        ORDER BY timestamp DESC
        LIMIT $1
    `
	args := []interface{}{limit}
	if spaceID >= 0 {
		query = `
            SELECT space_id, occupied, timestamp
            FROM parking_history
            WHERE space_id = $2
            ORDER BY timestamp DESC
            LIMIT $1
        `
		args = append(args, spaceID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var ts time.Time
		if err := rows.Scan(&e.SpaceID, &e.Occupied, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}

// Compile-time interface implementation check
var _ SpaceRepository = (*PostgresRepo)(nil)
