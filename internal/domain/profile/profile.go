package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FallbackDisplayName is used when neither metadata nor e-mail yield a name.
const FallbackDisplayName = "User"

// UserProfile is the directory entry for a principal. ID equals the principal's ID.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	Username    *string   `json:"username,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New builds the lazily-created profile for a principal seen for the first time.
func New(id uuid.UUID, email, fullName string) UserProfile {
	now := time.Now().UTC()
	name := DefaultDisplayName(fullName, email)
	return UserProfile{
		ID:          id,
		Email:       email,
		DisplayName: &name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DefaultDisplayName picks the metadata name, then the e-mail local part, then "User".
func DefaultDisplayName(fullName, email string) string {
	if n := strings.TrimSpace(fullName); n != "" {
		return n
	}
	if local, _, _ := strings.Cut(email, "@"); strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return FallbackDisplayName
}

// Patch carries owner edits. Nil fields are left untouched.
type Patch struct {
	DisplayName *string `json:"display_name"`
	Username    *string `json:"username"`
	AvatarURL   *string `json:"avatar_url"`
}

func (p Patch) Empty() bool {
	return p.DisplayName == nil && p.Username == nil && p.AvatarURL == nil
}

func (p Patch) Apply(u UserProfile) UserProfile {
	if p.DisplayName != nil {
		u.DisplayName = p.DisplayName
	}
	if p.Username != nil {
		u.Username = p.Username
	}
	if p.AvatarURL != nil {
		u.AvatarURL = p.AvatarURL
	}
	u.UpdatedAt = time.Now().UTC()
	return u
}

// Summary is the subset of a profile joined onto share listings.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
}

const (
	MinSearchLen   = 2
	MaxSearchLimit = 10
)
