package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/alanyang/promptshelf/internal/adapter/postgres"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	portprofile "github.com/alanyang/promptshelf/internal/port/profile"
)

var _ portprofile.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, display_name, username, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (domainprofile.UserProfile, error) {
	var p domainprofile.UserProfile
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Username, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func collectProfiles(rows pgx.Rows) ([]domainprofile.UserProfile, error) {
	defer rows.Close()

	profiles := []domainprofile.UserProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainprofile.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`

	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domainprofile.UserProfile{}, fmt.Errorf("querying profile %s: %w", id, pgdb.Classify(err))
	}
	return p, nil
}

// Create inserts the profile. On an id conflict the no-op update makes RETURNING
// yield the row that already exists, so concurrent first visits converge.
func (r *Repository) Create(ctx context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (id, email, display_name, username, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING ` + profileColumns

	created, err := scanProfile(r.pool.QueryRow(ctx, query,
		p.ID, p.Email, p.DisplayName, p.Username, p.AvatarURL, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return domainprofile.UserProfile{}, fmt.Errorf("inserting profile: %w", pgdb.Classify(err))
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error) {
	query := `
		UPDATE user_profiles
		SET display_name = $2, username = $3, avatar_url = $4, updated_at = $5
		WHERE id = $1
		RETURNING ` + profileColumns

	updated, err := scanProfile(r.pool.QueryRow(ctx, query,
		p.ID, p.DisplayName, p.Username, p.AvatarURL, p.UpdatedAt,
	))
	if err != nil {
		return domainprofile.UserProfile{}, fmt.Errorf("updating profile %s: %w", p.ID, pgdb.Classify(err))
	}
	return updated, nil
}

func (r *Repository) Search(ctx context.Context, term string, limit int) ([]domainprofile.UserProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE display_name ILIKE $1 OR email ILIKE $1 OR username ILIKE $1
		ORDER BY display_name NULLS LAST
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, "%"+escapeLike(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching profiles: %w", err)
	}
	return collectProfiles(rows)
}

func (r *Repository) List(ctx context.Context) ([]domainprofile.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY display_name NULLS LAST`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return collectProfiles(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
