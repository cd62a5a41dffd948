package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/alanyang/promptshelf/internal/adapter/memory"
	pgdb "github.com/alanyang/promptshelf/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/promptshelf/internal/adapter/postgres/eventbus"
	pgidempotency "github.com/alanyang/promptshelf/internal/adapter/postgres/idempotency"
	pgitem "github.com/alanyang/promptshelf/internal/adapter/postgres/item"
	pglocker "github.com/alanyang/promptshelf/internal/adapter/postgres/locker"
	pgprofile "github.com/alanyang/promptshelf/internal/adapter/postgres/profile"
	pgshare "github.com/alanyang/promptshelf/internal/adapter/postgres/share"
	rediscache "github.com/alanyang/promptshelf/internal/adapter/redis"
	"github.com/alanyang/promptshelf/internal/config"
	portcache "github.com/alanyang/promptshelf/internal/port/cache"
	portlocker "github.com/alanyang/promptshelf/internal/port/locker"
	portsession "github.com/alanyang/promptshelf/internal/port/session"

	itemsvc "github.com/alanyang/promptshelf/internal/service/item"
	"github.com/alanyang/promptshelf/internal/service/library"
	profilesvc "github.com/alanyang/promptshelf/internal/service/profile"
	sessionsvc "github.com/alanyang/promptshelf/internal/service/session"
	sharesvc "github.com/alanyang/promptshelf/internal/service/share"

	"github.com/alanyang/promptshelf/internal/transport"
	mcptransport "github.com/alanyang/promptshelf/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool    *pgxpool.Pool
	Server  *http.Server
	Library *library.Library

	bus   *pgeventbus.EventBus
	redis *goredis.Client
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	if err := cfg.RequireSecret(); err != nil {
		return nil, err
	}

	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	itemRepo := pgitem.New(pool)
	profileRepo := pgprofile.New(pool)
	shareRepo := pgshare.New(pool)
	eventBus := pgeventbus.New(pool)

	app := &App{Pool: pool, bus: eventBus}

	var (
		cache   portcache.Store
		revoker portsession.Revoker
	)
	if cfg.RedisURL != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		app.redis = client
		cache = rediscache.NewCache(client, cfg.RedisNamespace)
		revoker = rediscache.NewRevoker(client, cfg.RedisNamespace)
	} else {
		slog.Warn("REDIS_URL not set, cache and revocations are process-local")
		cache = memory.NewCache()
		revoker = memory.NewRevoker()
	}

	// ── Services ─────────────────────────────────────────────────────────────
	lib := library.New(cache,
		itemsvc.NewService(itemRepo, shareRepo, eventBus),
		profilesvc.NewService(profileRepo, eventBus),
		sharesvc.NewService(shareRepo, itemRepo, eventBus),
	)
	sessions := sessionsvc.NewService([]byte(cfg.JWTSecret), revoker, lib)
	app.Library = lib

	// ── Cross-replica invalidation ───────────────────────────────────────────
	if err := startInvalidation(ctx, lib, eventBus); err != nil {
		app.Close()
		return nil, err
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	mcpServer := mcptransport.New(lib)
	router := transport.NewRouter(lib, sessions, transport.RouterConfig{
		CORSOrigin:  cfg.CORSOrigin,
		MCP:         mcpServer.Handler(),
		Idempotency: pgidempotency.New(pool),
	})

	app.Server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port, "shared_cache", app.redis != nil)
	return app, nil
}

// Migrate connects, applies the schema and disconnects.
func Migrate(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	return migrate(ctx, pool)
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return migrateLocked(ctx, pglocker.New(pool), func(ctx context.Context) error {
		return pgdb.Migrate(ctx, pool)
	})
}

// migrateLocked runs apply under the migration advisory lock so replicas
// starting together apply the schema once.
func migrateLocked(ctx context.Context, locker portlocker.AdvisoryLocker, apply func(ctx context.Context) error) error {
	if err := locker.WithLock(ctx, pgdb.MigrationLockKey, apply); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	return nil
}

// Close releases listeners and connections. The pool is closed last.
func (a *App) Close() {
	if a.bus != nil {
		a.bus.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Error("closing redis client", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
