package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested patient does not exist.
var ErrNotFound = errors.New("patient: not found")

// Repository provides read access to patient profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID fetches a patient profile by its primary key. A non-UUID id can
// never match a row, so it is answered as not-found without a query rather
// than letting the uuid cast fail server-side.
func (r *Repository) GetByID(ctx context.Context, id string) (Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Profile{}, ErrNotFound
	}

	const query = `
		SELECT id, given_name, family_name, email, phone, created_at
		FROM patients
		WHERE id = $1
	`

	var profile Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.GivenName,
		&profile.FamilyName,
		&profile.Email,
		&profile.Phone,
		&profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("patient: query by id: %w", err)
	}

	return profile, nil
}

// Search fetches up to limit patient profiles whose name or email contains
// the query, ordered by family name. An empty query lists everyone.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	const searchSQL = `
		SELECT id, given_name, family_name, email, phone, created_at
		FROM patients
		WHERE $1 = ''
		   OR given_name ILIKE '%' || $1 || '%'
		   OR family_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'
		ORDER BY family_name ASC, given_name ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, searchSQL, query, limit)
	if err != nil {
		return nil, fmt.Errorf("patient: search: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0, limit)
	for rows.Next() {
		var profile Profile
		if err := rows.Scan(&profile.ID, &profile.GivenName, &profile.FamilyName, &profile.Email, &profile.Phone, &profile.CreatedAt); err != nil {
			return nil, fmt.Errorf("patient: scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient: iterate profiles: %w", err)
	}

	return profiles, nil
}
