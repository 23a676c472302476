package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals that the appointment does not exist.
	ErrNotFound = errors.New("appointment: not found")
	// ErrSlotTaken signals that the box is already booked for that time.
	ErrSlotTaken = errors.New("appointment: slot already taken")
)

// Repository handles data access for appointments.
type Repository interface {
	Insert(ctx context.Context, record Record) (Record, error)
	ListForUser(ctx context.Context, userID string) ([]Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	GetByID(ctx context.Context, id string) (Record, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Record, error)
}

const recordColumns = `id, user_id, patient_id, procedure_name, box, starts_at, ends_at, status, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed appointment repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert books an appointment. The unique (box, starts_at) index over
// non-cancelled rows is the backstop against double booking under
// concurrency; its violation is reported as ErrSlotTaken.
func (r *PGRepository) Insert(ctx context.Context, record Record) (Record, error) {
	const insertSQL = `
		INSERT INTO appointments (id, user_id, patient_id, procedure_name, box, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + recordColumns

	rec, err := scanRecord(r.pool.QueryRow(ctx, insertSQL,
		record.ID,
		record.UserID,
		record.PatientID,
		record.Procedure,
		record.Box,
		record.StartsAt,
		record.EndsAt,
		record.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrSlotTaken
		}
		return Record{}, fmt.Errorf("appointment: insert: %w", err)
	}
	return rec, nil
}

// ListForUser returns the appointments booked by one account, soonest first.
func (r *PGRepository) ListForUser(ctx context.Context, userID string) ([]Record, error) {
	const query = `
		SELECT ` + recordColumns + `
		FROM appointments
		WHERE user_id = $1
		ORDER BY starts_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("appointment: list for user: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListAll returns every appointment, soonest first.
func (r *PGRepository) ListAll(ctx context.Context) ([]Record, error) {
	const query = `
		SELECT ` + recordColumns + `
		FROM appointments
		ORDER BY starts_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointment: list all: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// CountByStatus counts appointments in the given status.
func (r *PGRepository) CountByStatus(ctx context.Context, status Status) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointment: count %s: %w", status, err)
	}
	return count, nil
}

// GetByID retrieves one appointment. Ids that do not parse as UUIDs are
// answered as not-found up front instead of surfacing a cast error from
// the database.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}

	const query = `
		SELECT ` + recordColumns + `
		FROM appointments
		WHERE id = $1
	`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("appointment: get by id: %w", err)
	}
	return rec, nil
}

// UpdateStatus moves an appointment to a new status.
func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status) (Record, error) {
	const query = `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + recordColumns

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("appointment: update status: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.PatientID,
		&rec.Procedure,
		&rec.Box,
		&rec.StartsAt,
		&rec.EndsAt,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.PatientID,
			&rec.Procedure,
			&rec.Box,
			&rec.StartsAt,
			&rec.EndsAt,
			&rec.Status,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("appointment: scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointment: iterate rows: %w", err)
	}
	return records, nil
}
