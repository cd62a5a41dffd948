package item

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/alanyang/promptshelf/internal/adapter/postgres"
	"github.com/alanyang/promptshelf/internal/domain/apperr"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	portitem "github.com/alanyang/promptshelf/internal/port/item"
)

var _ portitem.Repository = (*Repository)(nil)

// Repository implements port/item.Repository using Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const itemColumns = `id, created_at, title, content, type, user_id`

func scanItem(row pgx.Row) (domainitem.Item, error) {
	var it domainitem.Item
	err := row.Scan(&it.ID, &it.CreatedAt, &it.Title, &it.Content, &it.Type, &it.UserID)
	return it, err
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainitem.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []domainitem.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainitem.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domainitem.Item{}, fmt.Errorf("querying item %s: %w", id, pgdb.Classify(err))
	}
	return it, nil
}

func (r *Repository) Create(ctx context.Context, it domainitem.Item) (domainitem.Item, error) {
	query := `
		INSERT INTO items (id, created_at, title, content, type, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + itemColumns

	created, err := scanItem(r.pool.QueryRow(ctx, query,
		it.ID, it.CreatedAt, it.Title, it.Content, string(it.Type), it.UserID,
	))
	if err != nil {
		return domainitem.Item{}, fmt.Errorf("inserting item: %w", pgdb.Classify(err))
	}
	return created, nil
}

// Update rewrites the editable fields. user_id is not part of the SET list.
// The row lock taken by the UPDATE keeps the recipient list consistent with it.
func (r *Repository) Update(ctx context.Context, it domainitem.Item) (domainitem.Item, []uuid.UUID, error) {
	query := `
		UPDATE items SET title = $2, content = $3, type = $4
		WHERE id = $1
		RETURNING ` + itemColumns

	var (
		updated    domainitem.Item
		recipients []uuid.UUID
	)
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = scanItem(tx.QueryRow(ctx, query, it.ID, it.Title, it.Content, string(it.Type)))
		if err != nil {
			return fmt.Errorf("updating item %s: %w", it.ID, pgdb.Classify(err))
		}

		rows, err := tx.Query(ctx,
			`SELECT shared_with FROM shared_items WHERE item_id = $1 AND is_active`, it.ID)
		if err != nil {
			return fmt.Errorf("listing recipients of item %s: %w", it.ID, err)
		}
		recipients, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("collecting recipients of item %s: %w", it.ID, err)
		}
		return nil
	})
	if err != nil {
		return domainitem.Item{}, nil, err
	}
	return updated, recipients, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var recipients []uuid.UUID

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`UPDATE shared_items SET is_active = false
			 WHERE item_id = $1 AND is_active
			 RETURNING shared_with`, id)
		if err != nil {
			return fmt.Errorf("deactivating grants: %w", err)
		}
		recipients, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("collecting grant recipients: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("item %s: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipients, nil
}
