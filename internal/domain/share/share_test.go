package share_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/alanyang/promptshelf/internal/domain/share"
)

func TestNewGrants(t *testing.T) {
	sharer, itemID := uuid.New(), uuid.New()
	u1, u2 := uuid.New(), uuid.New()
	msg := "hello"

	grants := NewGrants(sharer, itemID, []uuid.UUID{u1, u2}, &msg)
	require.Len(t, grants, 2)

	for i, g := range grants {
		assert.Equal(t, sharer, g.SharedBy)
		assert.Equal(t, itemID, g.ItemID)
		assert.Equal(t, PermissionRead, g.Permission)
		assert.True(t, g.IsActive)
		require.NotNil(t, g.Message)
		assert.Equal(t, "hello", *g.Message)
		assert.Equal(t, []uuid.UUID{u1, u2}[i], g.SharedWith)
	}
	assert.NotEqual(t, grants[0].ID, grants[1].ID)
}
