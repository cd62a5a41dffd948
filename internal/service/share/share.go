package share

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/event"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainshare "github.com/alanyang/promptshelf/internal/domain/share"
	portbus "github.com/alanyang/promptshelf/internal/port/eventbus"
	portitem "github.com/alanyang/promptshelf/internal/port/item"
	portshare "github.com/alanyang/promptshelf/internal/port/share"
)

// Service manages share grants. The sharer is always the current principal.
type Service struct {
	repo  portshare.Repository
	items portitem.Repository
	bus   portbus.EventBus
}

func NewService(repo portshare.Repository, items portitem.Repository, bus portbus.EventBus) *Service {
	return &Service{repo: repo, items: items, bus: bus}
}

// Share grants read access on itemID to every recipient in one batch.
// Duplicate recipients collapse to one grant.
func (s *Service) Share(ctx context.Context, itemID uuid.UUID, recipients []uuid.UUID, message *string) ([]domainshare.SharedItem, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}

	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", apperr.ErrInvalidInput)
	}
	for _, r := range recipients {
		if r == uuid.Nil {
			return nil, fmt.Errorf("%w: invalid recipient", apperr.ErrInvalidInput)
		}
		if r == p.ID {
			return nil, fmt.Errorf("%w: cannot share with yourself", apperr.ErrInvalidInput)
		}
	}

	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("share item: %w", err)
	}
	if it.UserID != p.ID {
		return nil, fmt.Errorf("share item: %w: only the owner can share", apperr.ErrForbidden)
	}

	grants, err := s.repo.CreateBatch(ctx, domainshare.NewGrants(p.ID, itemID, recipients, normalizeMessage(message)))
	if err != nil {
		return nil, fmt.Errorf("share item: %w", err)
	}
	s.publish(ctx, event.New(event.TypeItemShared, itemID, p.ID, recipients...))
	return grants, nil
}

// Unshare deactivates a grant. Only its sharer may revoke it; revoking an
// inactive grant is a no-op.
func (s *Service) Unshare(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainshare.SharedItem{}, err
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainshare.SharedItem{}, fmt.Errorf("unshare: %w", err)
	}
	if g.SharedBy != p.ID {
		return domainshare.SharedItem{}, fmt.Errorf("unshare: %w: only the sharer can revoke", apperr.ErrForbidden)
	}
	if !g.IsActive {
		return g, nil
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return domainshare.SharedItem{}, fmt.Errorf("unshare: %w", err)
	}
	g.IsActive = false
	s.publish(ctx, event.New(event.TypeItemUnshared, g.ItemID, p.ID, g.SharedWith))
	return g, nil
}

func (s *Service) SharedByMe(ctx context.Context) ([]domainshare.SharedByMe, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListSharedBy(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list shared by me: %w", err)
	}
	return out, nil
}

func (s *Service) SharedWithMe(ctx context.Context) ([]domainshare.SharedWithMe, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListSharedWith(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list shared with me: %w", err)
	}
	return out, nil
}

// Get returns a grant, active or not, to its sharer or recipient.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainshare.SharedItem{}, err
	}
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainshare.SharedItem{}, fmt.Errorf("get share: %w", err)
	}
	if g.SharedBy != p.ID && g.SharedWith != p.ID {
		return domainshare.SharedItem{}, fmt.Errorf("get share: %w", apperr.ErrNotFound)
	}
	return g, nil
}

func (s *Service) publish(ctx context.Context, e event.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", e.Type, "entity_id", e.EntityID, "error", err)
	}
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeMessage(m *string) *string {
	if m == nil {
		return nil
	}
	t := strings.TrimSpace(*m)
	if t == "" {
		return nil
	}
	return &t
}
