package principal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
)

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

type ctxKey struct{}

func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	if !ok || p.ID == uuid.Nil {
		return Principal{}, false
	}
	return p, true
}

// Require returns the current principal or ErrUnauthenticated.
// Principal-scoped operations call it before issuing any store request.
func Require(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return Principal{}, apperr.ErrUnauthenticated
	}
	return p, nil
}
