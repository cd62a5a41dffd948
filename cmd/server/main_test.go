package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/promptshelf/internal/adapter/memory"
	sessionsvc "github.com/alanyang/promptshelf/internal/service/session"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	id := uuid.New()

	out, err := execute(t, "token", "--user-id", id.String(), "--email", "ada@example.com", "--name", "Ada")
	require.NoError(t, err)

	sessions := sessionsvc.NewService([]byte("cli-secret"), memory.NewRevoker(), nil)
	p, err := sessions.Authenticate(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "Ada", p.FullName)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "token", "--user-id", uuid.NewString())
	assert.Error(t, err)
}

func TestTokenCommand_InvalidUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	_, err := execute(t, "token", "--user-id", "nope")
	assert.Error(t, err)
}
