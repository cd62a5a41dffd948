package transport

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alanyang/promptshelf/internal/adapter/postgres/idempotency"
	"github.com/alanyang/promptshelf/internal/domain/principal"
)

// IdempotencyHeader carries a client-generated key for a mutating request.
const IdempotencyHeader = "Idempotency-Key"

// noisyPaths are high-frequency read paths logged at Debug to keep Info clean.
var noisyPaths = map[string]bool{
	"/healthz":          true,
	"/api/users/search": true,
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.Method == http.MethodOptions {
			return
		}

		level := slog.LevelInfo
		if c.Request.Method == http.MethodGet && noisyPaths[c.Request.URL.Path] {
			level = slog.LevelDebug
		}
		slog.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+IdempotencyHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authenticator turns a bearer token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (principal.Principal, error)
}

// AuthMiddleware attaches the principal named by a valid bearer token to the
// request context. Requests without one continue anonymously; principal-scoped
// operations then fail with ErrUnauthenticated.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "bearer token rejected", "error", err)
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(principal.WithContext(c.Request.Context(), p))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdempotencyStore persists responses of processed mutations per principal.
type IdempotencyStore interface {
	Check(ctx context.Context, principalID uuid.UUID, key string) (idempotency.Record, bool, error)
	Store(ctx context.Context, principalID uuid.UUID, key string, rec idempotency.Record) error
}

// IdempotencyMiddleware replays the stored response when an authenticated
// client repeats a mutation with the same Idempotency-Key. A key first used
// for a different method or path is rejected with 422 rather than replayed.
// Only responses below 500 are recorded, so failed attempts can be retried.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" || !isMutation(c.Request.Method) {
			c.Next()
			return
		}
		p, ok := principal.FromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		opType := c.Request.Method + " " + c.Request.URL.Path
		rec, found, err := store.Check(ctx, p.ID, key)
		if err != nil {
			slog.ErrorContext(ctx, "idempotency check failed", "key", key, "error", err)
			c.Next()
			return
		}
		if found && rec.OpType != opType {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"error": "idempotency key was already used for a different request",
			})
			return
		}
		if found {
			c.Header("Idempotent-Replayed", "true")
			c.Data(rec.StatusCode, "application/json; charset=utf-8", rec.Body)
			c.Abort()
			return
		}

		rw := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		c.Next()

		status := rw.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		if err := store.Store(ctx, p.ID, key, idempotency.Record{OpType: opType, StatusCode: status, Body: rw.body.Bytes()}); err != nil {
			slog.ErrorContext(ctx, "idempotency store failed", "key", key, "error", err)
		}
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
