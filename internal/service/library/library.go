// Package library is the cached read/write facade the transports call.
// Reads go through the cache store; successful mutations drop the affected
// keys without refetching, and change events from other replicas are applied
// with the same rules.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/event"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	domainshare "github.com/alanyang/promptshelf/internal/domain/share"
	portcache "github.com/alanyang/promptshelf/internal/port/cache"
)

type ItemService interface {
	List(ctx context.Context) ([]domainitem.Item, error)
	Get(ctx context.Context, id uuid.UUID) (domainitem.Item, error)
	Create(ctx context.Context, title *string, content string, itemType domainitem.Type) (domainitem.Item, error)
	Update(ctx context.Context, id uuid.UUID, patch domainitem.Patch) (domainitem.Item, []uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type ProfileService interface {
	GetOrCreate(ctx context.Context) (domainprofile.UserProfile, error)
	Search(ctx context.Context, term string) ([]domainprofile.UserProfile, error)
	List(ctx context.Context) ([]domainprofile.UserProfile, error)
	Update(ctx context.Context, patch domainprofile.Patch) (domainprofile.UserProfile, error)
}

type ShareService interface {
	Share(ctx context.Context, itemID uuid.UUID, recipients []uuid.UUID, message *string) ([]domainshare.SharedItem, error)
	Unshare(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error)
	SharedByMe(ctx context.Context) ([]domainshare.SharedByMe, error)
	SharedWithMe(ctx context.Context) ([]domainshare.SharedWithMe, error)
	Get(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error)
}

type Library struct {
	cache    portcache.Store
	items    ItemService
	profiles ProfileService
	shares   ShareService
	seq      *sequencer
}

func New(cache portcache.Store, items ItemService, profiles ProfileService, shares ShareService) *Library {
	return &Library{
		cache:    cache,
		items:    items,
		profiles: profiles,
		shares:   shares,
		seq:      newSequencer(),
	}
}

// SearchTTL bounds how long a user search result may be served from cache.
const SearchTTL = 5 * time.Minute

// cached serves key from the store or loads, stores and returns it.
// Failed loads are never cached. Store failures degrade to a direct load.
func cached[T any](ctx context.Context, store portcache.Store, key string, load func(context.Context) (T, error)) (T, error) {
	return cachedFor(ctx, store, key, 0, load)
}

// cachedFor is cached with a lifetime; ttl 0 keeps the value until invalidated.
func cachedFor[T any](ctx context.Context, store portcache.Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	raw, err := store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		slog.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
	case !errors.Is(err, portcache.ErrMiss):
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if ttl > 0 {
			err = store.SetTransient(ctx, key, raw, ttl)
		} else {
			err = store.Set(ctx, key, raw)
		}
		if err != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

// ── Items ───────────────────────────────────────────────────────────────────

func (l *Library) Items(ctx context.Context) ([]domainitem.Item, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, l.cache, ItemsKey(p.ID), l.items.List)
}

// Item is uncached; it backs single-item lookups such as MCP prompts.
func (l *Library) Item(ctx context.Context, id uuid.UUID) (domainitem.Item, error) {
	return l.items.Get(ctx, id)
}

func (l *Library) CreateItem(ctx context.Context, title *string, content string, itemType domainitem.Type) (domainitem.Item, error) {
	created, err := l.items.Create(ctx, title, content, itemType)
	if err != nil {
		return domainitem.Item{}, err
	}
	l.apply(ctx, event.New(event.TypeItemCreated, created.ID, created.UserID))
	return created, nil
}

func (l *Library) UpdateItem(ctx context.Context, id uuid.UUID, patch domainitem.Patch) (domainitem.Item, error) {
	updated, recipients, err := l.items.Update(ctx, id, patch)
	if err != nil {
		return domainitem.Item{}, err
	}
	l.apply(ctx, event.New(event.TypeItemUpdated, id, updated.UserID, recipients...))
	return updated, nil
}

func (l *Library) DeleteItem(ctx context.Context, id uuid.UUID) error {
	p, err := principal.Require(ctx)
	if err != nil {
		return err
	}
	recipients, err := l.items.Delete(ctx, id)
	if err != nil {
		return err
	}
	l.apply(ctx, event.New(event.TypeItemDeleted, id, p.ID, recipients...))
	return nil
}

// ── Shares ──────────────────────────────────────────────────────────────────

func (l *Library) SharedByMe(ctx context.Context) ([]domainshare.SharedByMe, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, l.cache, SharedByMeKey(p.ID), l.shares.SharedByMe)
}

func (l *Library) SharedWithMe(ctx context.Context) ([]domainshare.SharedWithMe, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	return cached(ctx, l.cache, SharedWithMeKey(p.ID), l.shares.SharedWithMe)
}

func (l *Library) Share(ctx context.Context, itemID uuid.UUID, recipients []uuid.UUID, message *string) ([]domainshare.SharedItem, error) {
	grants, err := l.shares.Share(ctx, itemID, recipients, message)
	if err != nil {
		return nil, err
	}
	if len(grants) > 0 {
		audience := make([]uuid.UUID, 0, len(grants))
		for _, g := range grants {
			audience = append(audience, g.SharedWith)
		}
		l.apply(ctx, event.New(event.TypeItemShared, itemID, grants[0].SharedBy, audience...))
	}
	return grants, nil
}

func (l *Library) Unshare(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error) {
	g, err := l.shares.Unshare(ctx, id)
	if err != nil {
		return domainshare.SharedItem{}, err
	}
	l.apply(ctx, event.New(event.TypeItemUnshared, g.ItemID, g.SharedBy, g.SharedWith))
	return g, nil
}

func (l *Library) Grant(ctx context.Context, id uuid.UUID) (domainshare.SharedItem, error) {
	return l.shares.Get(ctx, id)
}

// ── Users ───────────────────────────────────────────────────────────────────

// SearchUsers runs a directory search. seq, when positive, must not be lower
// than a sequence number this session already sent; otherwise ErrStale.
// Terms too short to query are never cached; others are cached for SearchTTL.
func (l *Library) SearchUsers(ctx context.Context, term string, seq int64) ([]domainprofile.UserProfile, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return nil, err
	}
	if !l.seq.observe(sequenceKey(p), seq) {
		return nil, fmt.Errorf("search %d: %w", seq, apperr.ErrStale)
	}

	load := func(ctx context.Context) ([]domainprofile.UserProfile, error) {
		return l.profiles.Search(ctx, term)
	}
	var found []domainprofile.UserProfile
	if utf8.RuneCountInString(strings.TrimSpace(term)) < domainprofile.MinSearchLen {
		found, err = load(ctx)
	} else {
		found, err = cachedFor(ctx, l.cache, UserSearchKey(term), SearchTTL, load)
	}
	if err != nil {
		return nil, err
	}
	if !l.seq.current(sequenceKey(p), seq) {
		return nil, fmt.Errorf("search %d: %w", seq, apperr.ErrStale)
	}
	return found, nil
}

func (l *Library) Users(ctx context.Context) ([]domainprofile.UserProfile, error) {
	if _, err := principal.Require(ctx); err != nil {
		return nil, err
	}
	return cached(ctx, l.cache, KeyAllUsers, l.profiles.List)
}

// CurrentProfile returns the principal's profile. A miss may create the
// profile, so it also drops directory listings.
func (l *Library) CurrentProfile(ctx context.Context) (domainprofile.UserProfile, error) {
	p, err := principal.Require(ctx)
	if err != nil {
		return domainprofile.UserProfile{}, err
	}
	return cached(ctx, l.cache, ProfileKey(p.ID), func(ctx context.Context) (domainprofile.UserProfile, error) {
		prof, err := l.profiles.GetOrCreate(ctx)
		if err != nil {
			return prof, err
		}
		if err := l.cache.InvalidatePrefix(ctx, prefixUsers); err != nil {
			slog.ErrorContext(ctx, "cache invalidation failed", "prefix", prefixUsers, "error", err)
		}
		return prof, nil
	})
}

func (l *Library) UpdateProfile(ctx context.Context, patch domainprofile.Patch) (domainprofile.UserProfile, error) {
	updated, err := l.profiles.Update(ctx, patch)
	if err != nil {
		return domainprofile.UserProfile{}, err
	}
	l.apply(ctx, event.New(event.TypeProfileChanged, updated.ID, updated.ID))
	return updated, nil
}

// ── Invalidation ────────────────────────────────────────────────────────────

// ApplyEvent drops the keys a change made elsewhere has made stale.
func (l *Library) ApplyEvent(ctx context.Context, e event.Event) {
	l.apply(ctx, e)
}

// Forget drops every key scoped to the principal. Called on sign-out.
func (l *Library) Forget(ctx context.Context, principalID uuid.UUID) error {
	l.seq.forget(principalID.String())
	if p, ok := principal.FromContext(ctx); ok && p.ID == principalID {
		l.seq.forget(sequenceKey(p))
	}
	if err := l.cache.Invalidate(ctx, principalKeys(principalID)...); err != nil {
		return fmt.Errorf("forget principal cache: %w", err)
	}
	return nil
}

func (l *Library) apply(ctx context.Context, e event.Event) {
	keys, prefixes := invalidations(e)
	if err := l.cache.Invalidate(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "cache invalidation failed", "event", e.Type, "keys", keys, "error", err)
	}
	for _, prefix := range prefixes {
		if err := l.cache.InvalidatePrefix(ctx, prefix); err != nil {
			slog.ErrorContext(ctx, "cache invalidation failed", "event", e.Type, "prefix", prefix, "error", err)
		}
	}
}
