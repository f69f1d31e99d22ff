package position

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for position source persistence.
type Repository interface {
	Create(ctx context.Context, src *PositionSource) error
	List(ctx context.Context) ([]PositionSource, error)
	Get(ctx context.Context, id string) (*PositionSource, error)
	Update(ctx context.Context, src *PositionSource) error
	UpdatePosition(ctx context.Context, id string, lat, lon float64) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed position source repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new position source.
func (r *SQLiteRepository) Create(ctx context.Context, src *PositionSource) error {
	const query = `INSERT INTO position_sources (id, name, latitude, longitude)
		VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, src.ID, src.Name, src.Latitude, src.Longitude)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrSourceExists, src.ID)
		}
		return fmt.Errorf("inserting position source %s: %w", src.ID, err)
	}
	return nil
}

// List returns all position sources ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]PositionSource, error) {
	const query = `SELECT id, name, latitude, longitude, created_at, updated_at
		FROM position_sources ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying position sources: %w", err)
	}
	defer rows.Close()

	var sources []PositionSource
	for rows.Next() {
		var s PositionSource
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning position source row: %w", err)
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating position source rows: %w", err)
	}
	return sources, nil
}

// Get returns a single position source by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*PositionSource, error) {
	const query = `SELECT id, name, latitude, longitude, created_at, updated_at
		FROM position_sources WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var s PositionSource
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.Name, &s.Latitude, &s.Longitude, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("scanning position source: %w", err)
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// Update modifies an existing position source.
func (r *SQLiteRepository) Update(ctx context.Context, src *PositionSource) error {
	const query = `UPDATE position_sources SET name = ?, latitude = ?, longitude = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, src.Name, src.Latitude, src.Longitude, src.ID)
	if err != nil {
		return fmt.Errorf("updating position source %s: %w", src.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// UpdatePosition stores new coordinates for a source.
// Used by the hub to persist MQTT position updates.
func (r *SQLiteRepository) UpdatePosition(ctx context.Context, id string, lat, lon float64) error {
	const query = `UPDATE position_sources SET latitude = ?, longitude = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, lat, lon, id)
	if err != nil {
		return fmt.Errorf("updating position for source %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// Delete removes a position source by ID.
// Fails if sensors still reference the source (FK constraint).
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM position_sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting position source %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02T15:04:05Z", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
