package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/event"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	portbus "github.com/alanyang/promptshelf/internal/port/eventbus"
	portprofile "github.com/alanyang/promptshelf/internal/port/profile"
)

// Service manages the user directory.
type Service struct {
	repo portprofile.Repository
	bus  portbus.EventBus
}

func NewService(repo portprofile.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, bus: bus}
}

// GetOrCreate returns the principal's profile, creating it on first sight.
func (s *Service) GetOrCreate(ctx context.Context) (domainprofile.UserProfile, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainprofile.UserProfile{}, err
	}

	existing, err := s.repo.GetByID(ctx, p.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return domainprofile.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	created, err := s.repo.Create(ctx, domainprofile.New(p.ID, p.Email, p.FullName))
	if err != nil {
		return domainprofile.UserProfile{}, fmt.Errorf("create profile: %w", err)
	}
	s.publish(ctx, event.New(event.TypeProfileChanged, created.ID, p.ID))
	return created, nil
}

// Search matches term against display name, e-mail and username.
// Terms shorter than two characters yield no results without querying.
func (s *Service) Search(ctx context.Context, term string) ([]domainprofile.UserProfile, error) {
	if _, err := principal.Require(ctx); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < domainprofile.MinSearchLen {
		return []domainprofile.UserProfile{}, nil
	}

	profiles, err := s.repo.Search(ctx, term, domainprofile.MaxSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) List(ctx context.Context) ([]domainprofile.UserProfile, error) {
	if _, err := principal.Require(ctx); err != nil {
		return nil, err
	}
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Update applies the owner's edits to their own profile.
func (s *Service) Update(ctx context.Context, patch domainprofile.Patch) (domainprofile.UserProfile, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainprofile.UserProfile{}, err
	}
	if patch.Empty() {
		return domainprofile.UserProfile{}, fmt.Errorf("%w: nothing to update", apperr.ErrInvalidInput)
	}
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return domainprofile.UserProfile{}, fmt.Errorf("%w: display name cannot be blank", apperr.ErrInvalidInput)
	}

	current, err := s.GetOrCreate(ctx)
	if err != nil {
		return domainprofile.UserProfile{}, err
	}
	updated, err := s.repo.Update(ctx, patch.Apply(current))
	if err != nil {
		return domainprofile.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	s.publish(ctx, event.New(event.TypeProfileChanged, updated.ID, p.ID))
	return updated, nil
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}
