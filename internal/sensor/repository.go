package sensor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/sundial-core/internal/solar"
)

// Repository defines the interface for sensor persistence operations.
type Repository interface {
	Create(ctx context.Context, s *TwilightSensor) error
	List(ctx context.Context) ([]TwilightSensor, error)
	Get(ctx context.Context, id string) (*TwilightSensor, error)
	GetBySlug(ctx context.Context, slug string) (*TwilightSensor, error)
	Update(ctx context.Context, s *TwilightSensor) error
	UpdateState(ctx context.Context, id string, active bool, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed sensor repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new sensor.
func (r *SQLiteRepository) Create(ctx context.Context, s *TwilightSensor) error {
	const query = `INSERT INTO sensors (id, name, slug, position_source, mode, enabled, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Slug, s.PositionSource, string(s.Mode),
		boolToInt(s.Enabled), boolToInt(s.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrExists, s.ID)
		}
		return fmt.Errorf("inserting sensor %s: %w", s.ID, err)
	}
	return nil
}

// List returns all sensors ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]TwilightSensor, error) {
	const query = `SELECT id, name, slug, position_source, mode, enabled, active,
		state_updated_at, created_at, updated_at
		FROM sensors ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	var sensors []TwilightSensor
	for rows.Next() {
		s, err := scanSensorRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sensor row: %w", err)
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensor rows: %w", err)
	}
	return sensors, nil
}

// Get returns a single sensor by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*TwilightSensor, error) {
	const query = `SELECT id, name, slug, position_source, mode, enabled, active,
		state_updated_at, created_at, updated_at
		FROM sensors WHERE id = ?`
	return r.getOne(ctx, query, id)
}

// GetBySlug returns a single sensor by slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*TwilightSensor, error) {
	const query = `SELECT id, name, slug, position_source, mode, enabled, active,
		state_updated_at, created_at, updated_at
		FROM sensors WHERE slug = ?`
	return r.getOne(ctx, query, slug)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (*TwilightSensor, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	s, err := scanSensor(row)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Update modifies a sensor's configuration.
// State fields (active, state_updated_at) are owned by UpdateState.
func (r *SQLiteRepository) Update(ctx context.Context, s *TwilightSensor) error {
	const query = `UPDATE sensors SET name = ?, slug = ?, position_source = ?,
		mode = ?, enabled = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Slug, s.PositionSource, string(s.Mode), boolToInt(s.Enabled), s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %s", ErrExists, s.Slug)
		}
		return fmt.Errorf("updating sensor %s: %w", s.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState persists a binary state transition.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, active bool, at time.Time) error {
	const query = `UPDATE sensors SET active = ?, state_updated_at = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		boolToInt(active), at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating state for sensor %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a sensor by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sensors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting sensor %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanSensor scans a single row into a TwilightSensor (for QueryRow).
func scanSensor(row *sql.Row) (*TwilightSensor, error) {
	var s TwilightSensor
	var mode string
	var enabled, active int
	var stateUpdatedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.PositionSource, &mode,
		&enabled, &active, &stateUpdatedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning sensor: %w", err)
	}

	s.Mode = solar.Mode(mode)
	s.Enabled = enabled != 0
	s.Active = active != 0
	if stateUpdatedAt.Valid {
		s.StateUpdatedAt = parseTime(stateUpdatedAt.String)
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// scanSensorRow scans a sensor from a Rows cursor.
func scanSensorRow(rows *sql.Rows) (*TwilightSensor, error) {
	var s TwilightSensor
	var mode string
	var enabled, active int
	var stateUpdatedAt sql.NullString
	var createdAt, updatedAt string

	err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.PositionSource, &mode,
		&enabled, &active, &stateUpdatedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	s.Mode = solar.Mode(mode)
	s.Enabled = enabled != 0
	s.Active = active != 0
	if stateUpdatedAt.Valid {
		s.StateUpdatedAt = parseTime(stateUpdatedAt.String)
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
