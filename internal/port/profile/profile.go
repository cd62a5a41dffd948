package profile

import (
	"context"

	"github.com/google/uuid"

	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
)

// Repository manages the user directory.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domainprofile.UserProfile, error)

	// Create inserts the profile or returns the existing row when another request won the race.
	Create(ctx context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error)
	Update(ctx context.Context, p domainprofile.UserProfile) (domainprofile.UserProfile, error)

	// Search matches term case-insensitively against display name, e-mail and username.
	Search(ctx context.Context, term string, limit int) ([]domainprofile.UserProfile, error)
	List(ctx context.Context) ([]domainprofile.UserProfile, error)
}
