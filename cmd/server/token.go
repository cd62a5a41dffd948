package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alanyang/promptshelf/internal/adapter/memory"
	"github.com/alanyang/promptshelf/internal/domain/principal"
	sessionsvc "github.com/alanyang/promptshelf/internal/service/session"
)

var (
	tokenUserID string
	tokenEmail  string
	tokenName   string
	tokenTTL    time.Duration
)

// tokenCmd mints an access token signed with JWT_SECRET, for local development
// against a server that is not fronted by the auth provider.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RequireSecret(); err != nil {
			return err
		}
		id, err := uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.TokenTTL
		}

		sessions := sessionsvc.NewService([]byte(cfg.JWTSecret), memory.NewRevoker(), nil)
		tok, err := sessions.Issue(principal.Principal{ID: id, Email: tokenEmail, FullName: tokenName}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "principal id (uuid)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "e-mail claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "user_metadata.full_name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = tokenCmd.MarkFlagRequired("user-id")
}
