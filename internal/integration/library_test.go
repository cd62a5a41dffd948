//go:build integration

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/promptshelf/internal/adapter/memory"
	pgeventbus "github.com/alanyang/promptshelf/internal/adapter/postgres/eventbus"
	pgitem "github.com/alanyang/promptshelf/internal/adapter/postgres/item"
	pgprofile "github.com/alanyang/promptshelf/internal/adapter/postgres/profile"
	pgshare "github.com/alanyang/promptshelf/internal/adapter/postgres/share"
	"github.com/alanyang/promptshelf/internal/domain/apperr"
	"github.com/alanyang/promptshelf/internal/domain/event"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	itemsvc "github.com/alanyang/promptshelf/internal/service/item"
	"github.com/alanyang/promptshelf/internal/service/library"
	profilesvc "github.com/alanyang/promptshelf/internal/service/profile"
	sharesvc "github.com/alanyang/promptshelf/internal/service/share"
	"github.com/alanyang/promptshelf/internal/testutil"
)

// ── test harness ──────────────────────────────────────────────────────────────

type replica struct {
	lib   *library.Library
	cache *memory.Cache
	bus   *pgeventbus.EventBus
}

// newReplica wires one server's worth of services over the shared pool.
func newReplica(t *testing.T, pool *pgxpool.Pool) *replica {
	t.Helper()
	items := pgitem.New(pool)
	profiles := pgprofile.New(pool)
	shares := pgshare.New(pool)
	bus := pgeventbus.New(pool)
	t.Cleanup(bus.Close)

	cache := memory.NewCache()
	lib := library.New(cache,
		itemsvc.NewService(items, shares, bus),
		profilesvc.NewService(profiles, bus),
		sharesvc.NewService(shares, items, bus),
	)
	return &replica{lib: lib, cache: cache, bus: bus}
}

// signIn returns a context for a fresh principal whose profile exists.
func (r *replica) signIn(t *testing.T, name string) (context.Context, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	ctx := principal.WithContext(context.Background(), principal.Principal{
		ID:       id,
		Email:    name + "-" + id.String()[:8] + "@example.com",
		FullName: name,
	})
	_, err := r.lib.CurrentProfile(ctx)
	require.NoError(t, err)
	return ctx, id
}

func strPtr(s string) *string { return &s }

// ── tests ─────────────────────────────────────────────────────────────────────

func TestItemLifecycle(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	ctx, owner := r.signIn(t, "owner")

	created, err := r.lib.CreateItem(ctx, strPtr("  "), "Be concise", domainitem.TypeRule)
	require.NoError(t, err)
	assert.Nil(t, created.Title, "blank title stored as null")
	assert.Equal(t, owner, created.UserID)

	second, err := r.lib.CreateItem(ctx, nil, "Explain like I'm five", domainitem.TypePrompt)
	require.NoError(t, err)

	list, err := r.lib.Items(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	updated, err := r.lib.UpdateItem(ctx, created.ID, domainitem.Patch{Title: strPtr("Style"), Content: "Be brief", Type: domainitem.TypeRule})
	require.NoError(t, err)
	assert.Equal(t, "Be brief", updated.Content)
	assert.Equal(t, owner, updated.UserID)

	list, err = r.lib.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Be brief", list[1].Content, "update visible after invalidation")

	require.NoError(t, r.lib.DeleteItem(ctx, created.ID))
	list, err = r.lib.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = r.lib.DeleteItem(ctx, created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestItem_OwnershipEnforced(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	ownerCtx, _ := r.signIn(t, "owner")
	otherCtx, _ := r.signIn(t, "other")

	it, err := r.lib.CreateItem(ownerCtx, nil, "mine", domainitem.TypePrompt)
	require.NoError(t, err)

	_, err = r.lib.UpdateItem(otherCtx, it.ID, domainitem.Patch{Content: "yours", Type: domainitem.TypePrompt})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.ErrorIs(t, r.lib.DeleteItem(otherCtx, it.ID), apperr.ErrForbidden)

	got, err := r.lib.Item(ownerCtx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)
}

func TestShareLifecycle(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	aliceCtx, alice := r.signIn(t, "alice")
	bobCtx, bob := r.signIn(t, "bob")
	carolCtx, carol := r.signIn(t, "carol")

	it, err := r.lib.CreateItem(aliceCtx, strPtr("Review"), "Check the tests", domainitem.TypePrompt)
	require.NoError(t, err)

	// Prime the recipients' caches so invalidation is observable.
	withMe, err := r.lib.SharedWithMe(bobCtx)
	require.NoError(t, err)
	require.Empty(t, withMe)

	grants, err := r.lib.Share(aliceCtx, it.ID, []uuid.UUID{bob, carol, bob}, strPtr("fyi"))
	require.NoError(t, err)
	require.Len(t, grants, 2, "duplicate recipients collapse")

	withMe, err = r.lib.SharedWithMe(bobCtx)
	require.NoError(t, err)
	require.Len(t, withMe, 1)
	assert.Equal(t, it.ID, withMe[0].Item.ID)
	assert.Equal(t, alice, withMe[0].SharedByUser.ID)
	assert.Equal(t, "fyi", *withMe[0].Message)

	// Sharing again to an active recipient updates the grant in place.
	_, err = r.lib.Share(aliceCtx, it.ID, []uuid.UUID{bob}, strPtr("again"))
	require.NoError(t, err)
	byMe, err := r.lib.SharedByMe(aliceCtx)
	require.NoError(t, err)
	assert.Len(t, byMe, 2)

	// Recipient can read the item; sharing it onward is not allowed.
	_, err = r.lib.Item(bobCtx, it.ID)
	require.NoError(t, err)
	_, err = r.lib.Share(bobCtx, it.ID, []uuid.UUID{carol}, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Edits reach recipients' cached listings.
	_, err = r.lib.UpdateItem(aliceCtx, it.ID, domainitem.Patch{Content: "Check the tests twice", Type: domainitem.TypePrompt})
	require.NoError(t, err)
	withMe, err = r.lib.SharedWithMe(carolCtx)
	require.NoError(t, err)
	require.Len(t, withMe, 1)
	assert.Equal(t, "Check the tests twice", withMe[0].Item.Content)

	// Only the sharer may unshare.
	var bobGrant uuid.UUID
	for _, g := range byMe {
		if g.SharedWith == bob {
			bobGrant = g.ID
		}
	}
	_, err = r.lib.Unshare(bobCtx, bobGrant)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	revoked, err := r.lib.Unshare(aliceCtx, bobGrant)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive)

	withMe, err = r.lib.SharedWithMe(bobCtx)
	require.NoError(t, err)
	assert.Empty(t, withMe)
	_, err = r.lib.Item(bobCtx, it.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Deleting the item retires the remaining grant.
	require.NoError(t, r.lib.DeleteItem(aliceCtx, it.ID))
	withMe, err = r.lib.SharedWithMe(carolCtx)
	require.NoError(t, err)
	assert.Empty(t, withMe)
}

func TestShare_UnknownRecipientRollsBack(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	aliceCtx, _ := r.signIn(t, "alice")
	_, bob := r.signIn(t, "bob")

	it, err := r.lib.CreateItem(aliceCtx, nil, "secret", domainitem.TypeRule)
	require.NoError(t, err)

	_, err = r.lib.Share(aliceCtx, it.ID, []uuid.UUID{bob, uuid.New()}, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	byMe, err := r.lib.SharedByMe(aliceCtx)
	require.NoError(t, err)
	assert.Empty(t, byMe, "no grant survives a failed batch")
}

func TestSearchUsers(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	ctx, _ := r.signIn(t, "searcher")
	marker := "zq" + uuid.NewString()[:6]
	_, target := r.signIn(t, marker)

	found, err := r.lib.SearchUsers(ctx, "  "+marker+"  ", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, target, found[0].ID)

	found, err = r.lib.SearchUsers(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, found, "single character never queries")

	found, err = r.lib.SearchUsers(ctx, "%%_"+marker, 0)
	require.NoError(t, err)
	assert.Empty(t, found, "wildcards match literally")
}

func TestProfile_GetOrCreateIsIdempotent(t *testing.T) {
	r := newReplica(t, testutil.SetupTestDB(t))
	ctx, id := r.signIn(t, "Grace Hopper")

	require.NoError(t, r.lib.Forget(ctx, id))
	p, err := r.lib.CurrentProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", *p.DisplayName)

	renamed, err := r.lib.UpdateProfile(ctx, domainprofile.Patch{DisplayName: strPtr("Amazing Grace")})
	require.NoError(t, err)
	assert.Equal(t, "Amazing Grace", *renamed.DisplayName)
}

func TestCrossReplicaInvalidation(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	writer := newReplica(t, pool)
	reader := newReplica(t, pool)

	ctx := context.Background()
	for _, ch := range event.Channels {
		_, err := reader.bus.Subscribe(ctx, ch, reader.lib.ApplyEvent)
		require.NoError(t, err)
	}

	aliceCtx, _ := writer.signIn(t, "alice")

	list, err := reader.lib.Items(aliceCtx)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = writer.lib.CreateItem(aliceCtx, nil, "from the other replica", domainitem.TypePrompt)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		list, err := reader.lib.Items(aliceCtx)
		return err == nil && len(list) == 1
	}, 5*time.Second, 50*time.Millisecond)
}
