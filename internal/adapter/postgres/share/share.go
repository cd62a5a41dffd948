package share

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/alanyang/promptshelf/internal/adapter/postgres"
	"github.com/alanyang/promptshelf/internal/domain/apperr"
	domainshare "github.com/alanyang/promptshelf/internal/domain/share"
	portshare "github.com/alanyang/promptshelf/internal/port/share"
)

var _ portshare.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const grantColumns = `id, created_at, item_id, shared_by, shared_with, permission, message, is_active`

func scanGrant(row pgx.Row) (domainshare.SharedItem, error) {
	var g domainshare.SharedItem
	err := row.Scan(&g.ID, &g.CreatedAt, &g.ItemID, &g.SharedBy, &g.SharedWith, &g.Permission, &g.Message, &g.IsActive)
	return g, err
}

// CreateBatch queues one upsert per grant and sends them as a single batch inside a
// transaction. Any rejected row rolls back the whole batch.
func (r *Repository) CreateBatch(ctx context.Context, grants []domainshare.SharedItem) ([]domainshare.SharedItem, error) {
	query := `
		INSERT INTO shared_items (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (item_id, shared_with) WHERE is_active
		DO UPDATE SET message = EXCLUDED.message
		RETURNING ` + grantColumns

	created := make([]domainshare.SharedItem, 0, len(grants))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, g := range grants {
			batch.Queue(query,
				g.ID, g.CreatedAt, g.ItemID, g.SharedBy, g.SharedWith,
				string(g.Permission), g.Message, g.IsActive,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range grants {
			g, err := scanGrant(br.QueryRow())
			if err != nil {
				br.Close()
				return fmt.Errorf("inserting grant: %w", pgdb.Classify(err))
			}
			created = append(created, g)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error) {
	query := `SELECT ` + grantColumns + ` FROM shared_items WHERE id = $1`

	g, err := scanGrant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domainshare.SharedItem{}, fmt.Errorf("querying grant %s: %w", id, pgdb.Classify(err))
	}
	return g, nil
}

func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE shared_items SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivating grant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("grant %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListSharedBy(ctx context.Context, sharerID uuid.UUID) ([]domainshare.SharedByMe, error) {
	query := `
		SELECT s.id, s.created_at, s.item_id, s.shared_by, s.shared_with, s.permission, s.message, s.is_active,
		       i.id, i.title, i.content, i.type, i.created_at,
		       u.id, u.email, u.display_name
		FROM shared_items s
		JOIN items i ON i.id = s.item_id
		JOIN user_profiles u ON u.id = s.shared_with
		WHERE s.shared_by = $1 AND s.is_active
		ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query, sharerID)
	if err != nil {
		return nil, fmt.Errorf("listing grants by sharer: %w", err)
	}
	defer rows.Close()

	out := []domainshare.SharedByMe{}
	for rows.Next() {
		var v domainshare.SharedByMe
		g := &v.SharedItem
		if err := rows.Scan(
			&g.ID, &g.CreatedAt, &g.ItemID, &g.SharedBy, &g.SharedWith, &g.Permission, &g.Message, &g.IsActive,
			&v.Item.ID, &v.Item.Title, &v.Item.Content, &v.Item.Type, &v.Item.CreatedAt,
			&v.SharedWithUser.ID, &v.SharedWithUser.Email, &v.SharedWithUser.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("scanning grant row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListSharedWith left-joins the sharer's profile: a sharer may never have opened
// the app and so may have no directory entry.
func (r *Repository) ListSharedWith(ctx context.Context, recipientID uuid.UUID) ([]domainshare.SharedWithMe, error) {
	query := `
		SELECT s.id, s.created_at, s.item_id, s.shared_by, s.shared_with, s.permission, s.message, s.is_active,
		       i.id, i.title, i.content, i.type, i.created_at,
		       s.shared_by, COALESCE(u.email, ''), u.display_name
		FROM shared_items s
		JOIN items i ON i.id = s.item_id
		LEFT JOIN user_profiles u ON u.id = s.shared_by
		WHERE s.shared_with = $1 AND s.is_active
		ORDER BY s.created_at DESC`

	rows, err := r.pool.Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing grants by recipient: %w", err)
	}
	defer rows.Close()

	out := []domainshare.SharedWithMe{}
	for rows.Next() {
		var v domainshare.SharedWithMe
		g := &v.SharedItem
		if err := rows.Scan(
			&g.ID, &g.CreatedAt, &g.ItemID, &g.SharedBy, &g.SharedWith, &g.Permission, &g.Message, &g.IsActive,
			&v.Item.ID, &v.Item.Title, &v.Item.Content, &v.Item.Type, &v.Item.CreatedAt,
			&v.SharedByUser.ID, &v.SharedByUser.Email, &v.SharedByUser.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("scanning grant row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) HasActiveGrant(ctx context.Context, itemID, recipientID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shared_items WHERE item_id = $1 AND shared_with = $2 AND is_active)`,
		itemID, recipientID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking grant: %w", err)
	}
	return ok, nil
}
