package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/promptshelf/internal/service/library"
	authhandler "github.com/alanyang/promptshelf/internal/transport/auth"
	itemhandler "github.com/alanyang/promptshelf/internal/transport/item"
	sharehandler "github.com/alanyang/promptshelf/internal/transport/share"
	userhandler "github.com/alanyang/promptshelf/internal/transport/user"
)

// Session is what the router needs from the session gate.
type Session interface {
	Authenticator
	authhandler.SignOuter
}

type RouterConfig struct {
	CORSOrigin  string
	MCP         http.Handler
	Idempotency IdempotencyStore
}

func NewRouter(lib *library.Library, sessions Session, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware(cfg.CORSOrigin))
	r.Use(AuthMiddleware(sessions))
	if cfg.Idempotency != nil {
		r.Use(IdempotencyMiddleware(cfg.Idempotency))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	itemhandler.Register(api.Group("/items"), lib)
	sharehandler.Register(api.Group("/shares"), lib)
	userhandler.Register(api, lib)
	authhandler.Register(api.Group("/auth"), r.Group("/auth"), sessions)

	if cfg.MCP != nil {
		r.Any("/mcp", gin.WrapH(cfg.MCP))
	}

	return r
}
