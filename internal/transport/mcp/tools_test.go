package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanyang/promptshelf/internal/adapter/memory"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	domainprofile "github.com/alanyang/promptshelf/internal/domain/profile"
	domainshare "github.com/alanyang/promptshelf/internal/domain/share"
	"github.com/alanyang/promptshelf/internal/mocks"
	itemsvc "github.com/alanyang/promptshelf/internal/service/item"
	"github.com/alanyang/promptshelf/internal/service/library"
	profilesvc "github.com/alanyang/promptshelf/internal/service/profile"
	sharesvc "github.com/alanyang/promptshelf/internal/service/share"
)

// ── helpers ───────────────────────────────────────────────────────────────────

type toolsDeps struct {
	items    *mocks.MockItemRepository
	shares   *mocks.MockShareRepository
	profiles *mocks.MockProfileRepository
}

func newToolsLib(t *testing.T) (*library.Library, toolsDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := toolsDeps{
		items:    mocks.NewMockItemRepository(ctrl),
		shares:   mocks.NewMockShareRepository(ctrl),
		profiles: mocks.NewMockProfileRepository(ctrl),
	}
	bus := mocks.NewMockEventBus(ctrl)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	lib := library.New(memory.NewCache(),
		itemsvc.NewService(d.items, d.shares, bus),
		profilesvc.NewService(d.profiles, bus),
		sharesvc.NewService(d.shares, d.items, bus),
	)
	return lib, d
}

func as(id uuid.UUID) context.Context {
	return principal.WithContext(context.Background(), principal.Principal{ID: id})
}

func makeReq(args map[string]any) mcpmcp.CallToolRequest {
	var req mcpmcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(r *mcpmcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	b, _ := json.Marshal(r.Content[0])
	var m map[string]interface{}
	json.Unmarshal(b, &m) //nolint:errcheck
	if t, ok := m["text"].(string); ok {
		return t
	}
	return ""
}

// ── list_items ────────────────────────────────────────────────────────────────

func TestListItemsHandler(t *testing.T) {
	lib, d := newToolsLib(t)
	me := uuid.New()
	d.items.EXPECT().ListByOwner(gomock.Any(), me).Return([]domainitem.Item{
		{ID: uuid.New(), UserID: me, Content: "p", Type: domainitem.TypePrompt},
		{ID: uuid.New(), UserID: me, Content: "r", Type: domainitem.TypeRule},
	}, nil)

	res, err := listItemsHandler(lib)(as(me), makeReq(map[string]any{"type": "rule"}))
	require.NoError(t, err)

	var out struct {
		Items  []domainitem.Item `json:"items"`
		Counts domainitem.Counts `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "r", out.Items[0].Content)
	assert.Equal(t, domainitem.Counts{All: 2, Prompt: 1, Rule: 1}, out.Counts)
}

func TestListItemsHandler_BadFilter(t *testing.T) {
	lib, _ := newToolsLib(t)

	res, err := listItemsHandler(lib)(as(uuid.New()), makeReq(map[string]any{"type": "snippet"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "error: invalid input")
}

func TestListItemsHandler_Unauthenticated(t *testing.T) {
	lib, _ := newToolsLib(t)

	res, err := listItemsHandler(lib)(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "unauthenticated")
}

// ── create_item ───────────────────────────────────────────────────────────────

func TestCreateItemHandler(t *testing.T) {
	tests := []struct {
		name         string
		args         map[string]any
		setup        func(d toolsDeps)
		wantContains string
	}{
		{
			name: "created",
			args: map[string]any{"content": "Be concise", "type": "rule", "title": "Style"},
			setup: func(d toolsDeps) {
				d.items.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, it domainitem.Item) (domainitem.Item, error) { return it, nil })
			},
			wantContains: `"content":"Be concise"`,
		},
		{
			name:         "blank content",
			args:         map[string]any{"content": "  ", "type": "prompt"},
			setup:        func(toolsDeps) {},
			wantContains: "error: invalid input",
		},
		{
			name:         "missing type",
			args:         map[string]any{"content": "x"},
			setup:        func(toolsDeps) {},
			wantContains: "error: invalid input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, d := newToolsLib(t)
			tt.setup(d)

			res, err := createItemHandler(lib)(as(uuid.New()), makeReq(tt.args))
			require.NoError(t, err)
			assert.Contains(t, resultText(res), tt.wantContains)
		})
	}
}

// ── search_users ──────────────────────────────────────────────────────────────

func TestSearchUsersHandler_ShortQuery(t *testing.T) {
	lib, _ := newToolsLib(t)

	res, err := searchUsersHandler(lib)(as(uuid.New()), makeReq(map[string]any{"query": "a"}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(res))
}

func TestSearchUsersHandler(t *testing.T) {
	lib, d := newToolsLib(t)
	d.profiles.EXPECT().Search(gomock.Any(), "ann", domainprofile.MaxSearchLimit).
		Return([]domainprofile.UserProfile{{ID: uuid.New(), Email: "ann@example.com"}}, nil)

	res, err := searchUsersHandler(lib)(as(uuid.New()), makeReq(map[string]any{"query": "ann"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "ann@example.com")
}

// ── share_item ────────────────────────────────────────────────────────────────

func TestShareItemHandler(t *testing.T) {
	me, itemID, bob := uuid.New(), uuid.New(), uuid.New()

	t.Run("shares with every recipient", func(t *testing.T) {
		lib, d := newToolsLib(t)
		d.items.EXPECT().GetByID(gomock.Any(), itemID).Return(domainitem.Item{ID: itemID, UserID: me}, nil)
		d.shares.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, g []domainshare.SharedItem) ([]domainshare.SharedItem, error) { return g, nil })

		res, err := shareItemHandler(lib)(as(me), makeReq(map[string]any{
			"item_id":       itemID.String(),
			"recipient_ids": []any{bob.String()},
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(res), bob.String())
	})

	t.Run("invalid recipient", func(t *testing.T) {
		lib, _ := newToolsLib(t)

		res, err := shareItemHandler(lib)(as(me), makeReq(map[string]any{
			"item_id":       itemID.String(),
			"recipient_ids": []any{"nope"},
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(res), "invalid recipient id")
	})

	t.Run("no recipients", func(t *testing.T) {
		lib, _ := newToolsLib(t)

		res, err := shareItemHandler(lib)(as(me), makeReq(map[string]any{"item_id": itemID.String()}))
		require.NoError(t, err)
		assert.Contains(t, resultText(res), "at least one recipient")
	})

	t.Run("not the owner", func(t *testing.T) {
		lib, d := newToolsLib(t)
		d.items.EXPECT().GetByID(gomock.Any(), itemID).Return(domainitem.Item{ID: itemID, UserID: uuid.New()}, nil)

		res, err := shareItemHandler(lib)(as(me), makeReq(map[string]any{
			"item_id":       itemID.String(),
			"recipient_ids": []any{bob.String()},
		}))
		require.NoError(t, err)
		assert.Contains(t, resultText(res), "forbidden")
	})
}

// ── list_shared_with_me ───────────────────────────────────────────────────────

func TestListSharedWithMeHandler_HidesRemoteFailure(t *testing.T) {
	lib, d := newToolsLib(t)
	d.shares.EXPECT().ListSharedWith(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	res, err := listSharedWithMeHandler(lib)(as(uuid.New()), makeReq(nil))
	require.NoError(t, err)
	assert.Equal(t, "error: something went wrong, try again", resultText(res))
}

// ── library_item prompt ───────────────────────────────────────────────────────

func TestLibraryItemPrompt(t *testing.T) {
	lib, d := newToolsLib(t)
	me, id := uuid.New(), uuid.New()
	title := "Reviewer"
	d.items.EXPECT().GetByID(gomock.Any(), id).Return(
		domainitem.Item{ID: id, UserID: me, Title: &title, Content: "Review carefully.", Type: domainitem.TypePrompt}, nil)

	var req mcpmcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"item_id": id.String()}

	res, err := libraryItemHandler(lib)(as(me), req)
	require.NoError(t, err)
	assert.Equal(t, "Reviewer (prompt)", res.Description)
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(mcpmcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Review carefully.", text.Text)
}

func TestLibraryItemPrompt_InvalidID(t *testing.T) {
	lib, _ := newToolsLib(t)

	var req mcpmcp.GetPromptRequest
	req.Params.Arguments = map[string]string{"item_id": "x"}

	_, err := libraryItemHandler(lib)(as(uuid.New()), req)
	assert.Error(t, err)
}

func TestCarryPrincipal(t *testing.T) {
	id := uuid.New()
	r, err := http.NewRequestWithContext(as(id), http.MethodPost, "/mcp", nil)
	require.NoError(t, err)

	ctx := carryPrincipal(context.Background(), r)
	p, ok := principal.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, p.ID)
}
