package item

import (
	"context"

	"github.com/google/uuid"

	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
)

// Repository is the storage abstraction for items.
// [DIP] service/item depends on this interface, not on any concrete storage.
type Repository interface {
	// ListByOwner returns the owner's items, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainitem.Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainitem.Item, error)
	Create(ctx context.Context, it domainitem.Item) (domainitem.Item, error)

	// Update rewrites the editable fields and returns the recipients holding an
	// active grant, read in the same transaction.
	Update(ctx context.Context, it domainitem.Item) (domainitem.Item, []uuid.UUID, error)

	// Delete removes the item and deactivates its grants atomically.
	// Returns the recipients whose active grants were deactivated.
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}
