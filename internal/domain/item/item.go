package item

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
)

type Type string

const (
	TypePrompt Type = "prompt"
	TypeRule   Type = "rule"
)

func (t Type) Valid() bool {
	return t == TypePrompt || t == TypeRule
}

// Item is a user-owned text snippet. UserID never changes after creation.
type Item struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     *string   `json:"title,omitempty"`
	Content   string    `json:"content"`
	Type      Type      `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
}

func New(userID uuid.UUID, title *string, content string, itemType Type) Item {
	return Item{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Title:     normalizeTitle(title),
		Content:   content,
		Type:      itemType,
		UserID:    userID,
	}
}

// Validate checks the editable fields. Content must be non-blank after trimming.
func Validate(content string, itemType Type) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", apperr.ErrInvalidInput)
	}
	if !itemType.Valid() {
		return fmt.Errorf("%w: type must be %q or %q", apperr.ErrInvalidInput, TypePrompt, TypeRule)
	}
	return nil
}

// Patch holds the mutable fields of an item.
type Patch struct {
	Title   *string
	Content string
	Type    Type
}

func (p Patch) Apply(it Item) Item {
	it.Title = normalizeTitle(p.Title)
	it.Content = p.Content
	it.Type = p.Type
	return it
}

// DisplayTitle mirrors what the UI shows for an untitled item.
func (it Item) DisplayTitle() string {
	if it.Title == nil {
		return "Untitled"
	}
	return *it.Title
}

func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return nil
	}
	return &t
}
