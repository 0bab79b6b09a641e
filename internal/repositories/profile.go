package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mgclone/internal/models"
	"github.com/desertthunder/mgclone/internal/shared"
)

// ProfileRepository implements [models.Repository] for [models.Profile] persistence.
type ProfileRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Profile] = (*ProfileRepository)(nil)

// NewProfileRepository creates a new [ProfileRepository] with the given database connection
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, sequence, name, uri, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		id        string
		sequence  int
		name      string
		uri       string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &name, &uri, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	profile := models.NewProfile(sequence, name, uri)
	profile.SetID(id)
	profile.SetCreatedAt(createdAt)
	profile.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		profile.SetDeletedAt(&deletedAt.Time)
	}
	return profile, nil
}

// Create inserts a new profile with generated ID and sequence
func (r *ProfileRepository) Create(profile *models.Profile) error {
	profile.SetID(shared.GenerateID())
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "profiles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	profile.SetSequence(sequence)

	query := `
		INSERT INTO profiles (id, sequence, name, uri, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, profile.ID(), sequence, profile.Name(), profile.URI(), profile.CreatedAt(), profile.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// Get retrieves a profile by ID, excluding soft-deleted profiles
func (r *ProfileRepository) Get(id string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ? AND deleted_at IS NULL`

	profile, err := scanProfile(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return profile, nil
}

// GetByName retrieves a live profile by its unique name
func (r *ProfileRepository) GetByName(name string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE name = ? AND deleted_at IS NULL`

	profile, err := scanProfile(r.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProfileNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return profile, nil
}

// Update stores a new URI for an existing profile
func (r *ProfileRepository) Update(profile *models.Profile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	profile.SetUpdatedAt(now)

	query := `
		UPDATE profiles
		SET uri = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, profile.URI(), now, profile.ID())
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return expectOne(result, profile.ID())
}

// Delete soft-deletes a profile by ID
func (r *ProfileRepository) Delete(id string) error {
	query := `
		UPDATE profiles
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	return expectOne(result, id)
}

// List retrieves live profiles in creation order.
//
// Supported criteria: "name" (exact match).
func (r *ProfileRepository) List(criteria map[string]any) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE deleted_at IS NULL`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return profiles, nil
}

func expectOne(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s (not found or already deleted)", shared.ErrProfileNotFound, id)
	}
	return nil
}
