package auth

import (
	"context"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/promptshelf/internal/transport/httperr"
)

//go:embed auth_code_error.html
var authCodeErrorPage string

var authCodeErrorTmpl = template.Must(template.New("auth-code-error").Parse(authCodeErrorPage))

// LoginPath is where the error page sends users to start over.
const LoginPath = "/login"

type SignOuter interface {
	SignOut(ctx context.Context) error
}

// Register mounts the JSON sign-out endpoint on api and the confirmation error page on pages.
func Register(api, pages *gin.RouterGroup, sessions SignOuter) {
	api.POST("/sign-out", signOut(sessions))
	pages.GET("/auth-code-error", authCodeError())
}

func signOut(sessions SignOuter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sessions.SignOut(c.Request.Context()); err != nil {
			httperr.Write(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// authCodeError is where the auth provider redirects when an e-mail
// confirmation link is expired, reused, or invalid.
func authCodeError() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := authCodeErrorTmpl.Execute(c.Writer, gin.H{"LoginPath": LoginPath}); err != nil {
			slog.ErrorContext(c.Request.Context(), "rendering auth error page", "error", err)
		}
	}
}
