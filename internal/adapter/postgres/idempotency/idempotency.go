package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record is a stored response for a previously processed mutation.
// OpType names the request the key was first used for.
type Record struct {
	OpType     string
	StatusCode int
	Body       []byte
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Check looks up an idempotency key scoped to the principal. Returns the stored
// response, whether the key exists, and any error.
func (r *Repository) Check(ctx context.Context, principalID uuid.UUID, key string) (Record, bool, error) {
	query := `
		SELECT operation_type, status_code, response_body FROM processed_operations
		WHERE principal_id = $1 AND idempotency_key = $2`

	var rec Record
	err := r.pool.QueryRow(ctx, query, principalID, key).Scan(&rec.OpType, &rec.StatusCode, &rec.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return rec, true, nil
}

// Store records a processed operation keyed by principal and idempotency key.
func (r *Repository) Store(ctx context.Context, principalID uuid.UUID, key string, rec Record) error {
	query := `
		INSERT INTO processed_operations (idempotency_key, principal_id, operation_type, status_code, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (principal_id, idempotency_key) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, key, principalID, rec.OpType, rec.StatusCode, rec.Body)
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
