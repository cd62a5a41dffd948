// Package session verifies provider-issued access tokens and tears sessions down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	portsession "github.com/alanyang/promptshelf/internal/port/session"
)

const defaultLeeway = 30 * time.Second

// Claims is the access token payload issued by the auth provider.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	SessionID    string       `json:"session_id,omitempty"`
}

type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// Teardown drops per-principal state held outside the token, such as cached queries.
type Teardown interface {
	Forget(ctx context.Context, principalID uuid.UUID) error
}

type Service struct {
	secret   []byte
	revoker  portsession.Revoker
	teardown Teardown
	leeway   time.Duration
}

func NewService(secret []byte, revoker portsession.Revoker, teardown Teardown) *Service {
	return &Service{secret: secret, revoker: revoker, teardown: teardown, leeway: defaultLeeway}
}

// Authenticate validates an HS256 token and returns the principal it names.
// Any verification failure, including a signed-out session, is ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (principal.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return principal.Principal{}, apperr.ErrUnauthenticated
	}

	claims := &Claims{}
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
	}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, parserOptions...)
	if err != nil {
		return principal.Principal{}, fmt.Errorf("%w: %v", apperr.ErrUnauthenticated, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return principal.Principal{}, fmt.Errorf("%w: token subject is not a user id", apperr.ErrUnauthenticated)
	}

	// A token without a session id could never be signed out.
	if claims.SessionID == "" {
		return principal.Principal{}, fmt.Errorf("%w: token has no session", apperr.ErrUnauthenticated)
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return principal.Principal{}, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return principal.Principal{}, fmt.Errorf("%w: session signed out", apperr.ErrUnauthenticated)
	}

	return principal.Principal{
		ID:        id,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue mints a token for p that Authenticate accepts. A session id is
// generated when p has none.
func (s *Service) Issue(p principal.Principal, ttl time.Duration) (string, error) {
	if p.ID == uuid.Nil {
		return "", errors.New("issue token: principal id is required")
	}
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:        p.Email,
		UserMetadata: UserMetadata{FullName: p.FullName},
		SessionID:    p.SessionID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// SignOut revokes the current session and forgets the principal's cached state.
func (s *Service) SignOut(ctx context.Context) error {
	p, err := principal.Require(ctx)
	if err != nil {
		return err
	}
	if p.SessionID == "" {
		return fmt.Errorf("%w: no session to sign out", apperr.ErrUnauthenticated)
	}
	if err := s.revoker.Revoke(ctx, p.SessionID, p.ExpiresAt.Add(s.leeway)); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if s.teardown != nil {
		if err := s.teardown.Forget(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "failed to clear cache on sign-out", "user_id", p.ID, "error", err)
		}
	}
	return nil
}
