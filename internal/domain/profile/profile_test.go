package profile_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/alanyang/promptshelf/internal/domain/profile"
)

func TestDefaultDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		email    string
		want     string
	}{
		{name: "metadata name wins", fullName: "Alice Smith", email: "alice@example.com", want: "Alice Smith"},
		{name: "email local part", fullName: "", email: "bob@example.com", want: "bob"},
		{name: "blank metadata falls through", fullName: "   ", email: "carol@example.com", want: "carol"},
		{name: "no email", fullName: "", email: "", want: FallbackDisplayName},
		{name: "email without local part", fullName: "", email: "@example.com", want: FallbackDisplayName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultDisplayName(tt.fullName, tt.email))
		})
	}
}

func TestNew(t *testing.T) {
	id := uuid.New()
	p := New(id, "dana@example.com", "")

	assert.Equal(t, id, p.ID)
	require.NotNil(t, p.DisplayName)
	assert.Equal(t, "dana", *p.DisplayName)
	assert.Nil(t, p.Username)
}

func TestPatchApply(t *testing.T) {
	p := New(uuid.New(), "erin@example.com", "Erin")
	handle := "erin_k"

	assert.True(t, Patch{}.Empty())

	got := Patch{Username: &handle}.Apply(p)
	require.NotNil(t, got.Username)
	assert.Equal(t, "erin_k", *got.Username)
	assert.Equal(t, "Erin", *got.DisplayName, "untouched fields are kept")
}
