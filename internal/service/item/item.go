package item

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/event"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	portbus "github.com/alanyang/promptshelf/internal/port/eventbus"
	portitem "github.com/alanyang/promptshelf/internal/port/item"
	portshare "github.com/alanyang/promptshelf/internal/port/share"
)

// Service owns the item lifecycle for the current principal.
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	repo   portitem.Repository
	shares portshare.Repository
	bus    portbus.EventBus
}

func NewService(repo portitem.Repository, shares portshare.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, shares: shares, bus: bus}
}

// List returns the principal's items, newest first.
func (s *Service) List(ctx context.Context) ([]domainitem.Item, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Get returns an item readable by the principal: its owner or an active recipient.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domainitem.Item, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainitem.Item{}, err
	}
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	if it.UserID == p.ID {
		return it, nil
	}
	ok, err := s.shares.HasActiveGrant(ctx, id, p.ID)
	if err != nil {
		return domainitem.Item{}, fmt.Errorf("get item: %w", err)
	}
	if !ok {
		// Not revealing existence to non-recipients.
		return domainitem.Item{}, fmt.Errorf("get item: %w", apperr.ErrNotFound)
	}
	return it, nil
}

func (s *Service) Create(ctx context.Context, title *string, content string, itemType domainitem.Type) (domainitem.Item, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainitem.Item{}, err
	}
	if err := domainitem.Validate(content, itemType); err != nil {
		return domainitem.Item{}, err
	}

	created, err := s.repo.Create(ctx, domainitem.New(p.ID, title, content, itemType))
	if err != nil {
		return domainitem.Item{}, fmt.Errorf("create item: %w", err)
	}
	s.publish(ctx, event.New(event.TypeItemCreated, created.ID, p.ID))
	return created, nil
}

// Update replaces the editable fields. Only the owner may update.
// The returned recipients are the principals currently holding a grant on the item.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch domainitem.Patch) (domainitem.Item, []uuid.UUID, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainitem.Item{}, nil, err
	}
	if err := domainitem.Validate(patch.Content, patch.Type); err != nil {
		return domainitem.Item{}, nil, err
	}

	existing, err := s.owned(ctx, p, id)
	if err != nil {
		return domainitem.Item{}, nil, fmt.Errorf("update item: %w", err)
	}
	updated, recipients, err := s.repo.Update(ctx, patch.Apply(existing))
	if err != nil {
		return domainitem.Item{}, nil, fmt.Errorf("update item: %w", err)
	}
	s.publish(ctx, event.New(event.TypeItemUpdated, id, p.ID, recipients...))
	return updated, recipients, nil
}

// Delete hard-deletes the item and deactivates its grants.
// Returns the recipients who lost access.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, p, id); err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}

	recipients, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete item: %w", err)
	}
	s.publish(ctx, event.New(event.TypeItemDeleted, id, p.ID, recipients...))
	return recipients, nil
}

func (s *Service) owned(ctx context.Context, p principal.Principal, id uuid.UUID) (domainitem.Item, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainitem.Item{}, err
	}
	if it.UserID != p.ID {
		return domainitem.Item{}, fmt.Errorf("%w: item belongs to another user", apperr.ErrForbidden)
	}
	return it, nil
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}
