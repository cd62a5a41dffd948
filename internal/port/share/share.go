package share

import (
	"context"

	"github.com/google/uuid"

	domainshare "github.com/alanyang/promptshelf/internal/domain/share"
)

// Repository manages share grants.
type Repository interface {
	// CreateBatch inserts all grants in one statement; either every grant is stored or none.
	// A grant whose (item, recipient) pair is already active is refreshed instead of duplicated.
	CreateBatch(ctx context.Context, grants []domainshare.SharedItem) ([]domainshare.SharedItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	ListSharedBy(ctx context.Context, sharerID uuid.UUID) ([]domainshare.SharedByMe, error)
	ListSharedWith(ctx context.Context, recipientID uuid.UUID) ([]domainshare.SharedWithMe, error)

	// HasActiveGrant reports whether recipientID can currently read itemID.
	HasActiveGrant(ctx context.Context, itemID, recipientID uuid.UUID) (bool, error)
}
