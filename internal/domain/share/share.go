package share

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/domain/profile"
)

type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// SharedItem is a directed grant from SharedBy to SharedWith for one item.
// Unsharing flips IsActive; rows are never deleted.
type SharedItem struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ItemID     uuid.UUID  `json:"item_id"`
	SharedBy   uuid.UUID  `json:"shared_by"`
	SharedWith uuid.UUID  `json:"shared_with"`
	Permission Permission `json:"permission"`
	Message    *string    `json:"message,omitempty"`
	IsActive   bool       `json:"is_active"`
}

// NewGrants builds one read grant per recipient, all sharing the same message.
func NewGrants(sharer, itemID uuid.UUID, recipients []uuid.UUID, message *string) []SharedItem {
	now := time.Now().UTC()
	grants := make([]SharedItem, 0, len(recipients))
	for _, r := range recipients {
		grants = append(grants, SharedItem{
			ID:         uuid.New(),
			CreatedAt:  now,
			ItemID:     itemID,
			SharedBy:   sharer,
			SharedWith: r,
			Permission: PermissionRead,
			Message:    message,
			IsActive:   true,
		})
	}
	return grants
}

// ItemSummary is the display subset of the referenced item.
type ItemSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title,omitempty"`
	Content   string    `json:"content"`
	Type      item.Type `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// SharedByMe is an outgoing grant joined with its item and recipient.
type SharedByMe struct {
	SharedItem
	Item           ItemSummary     `json:"items"`
	SharedWithUser profile.Summary `json:"shared_with_user"`
}

// SharedWithMe is an incoming grant joined with its item and sharer.
type SharedWithMe struct {
	SharedItem
	Item         ItemSummary     `json:"items"`
	SharedByUser profile.Summary `json:"shared_by_user"`
}
