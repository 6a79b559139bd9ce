package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/estate-hub/internal/common/config"
	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	"github.com/AlibekovAA/estate-hub/internal/common/db"
	"github.com/AlibekovAA/estate-hub/internal/common/logger"
	"github.com/AlibekovAA/estate-hub/internal/common/migrate"
	"github.com/AlibekovAA/estate-hub/internal/presence"
	userrepo "github.com/AlibekovAA/estate-hub/internal/user/repository"
)

type App struct {
	Log      *logger.Logger
	Config   config.Config
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	UserRepo userrepo.Repository
	Registry presence.Registry
}

// NewApp brings up everything the API needs before routes are mounted.
func NewApp(ctx context.Context, serviceName string) (*App, error) {
	log, err := initializeLogger(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
		return nil, err
	}

	pool, err := db.NewPool(ctx, log, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := migrate.Up(ctx, log, cfg.Database.URL); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)

	app := &App{
		Log:      log,
		Config:   cfg,
		Pool:     pool,
		UserRepo: userrepo.NewPgRepository(pool),
	}

	if err := app.initializePresence(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return app, nil
}

func (a *App) initializePresence(ctx context.Context) error {
	switch a.Config.Presence.Backend {
	case config.PresenceRedis:
		client, err := presence.OpenRedis(ctx, a.Config.Presence.RedisURL)
		if err != nil {
			return err
		}
		a.Redis = client
		a.Registry = presence.NewRedisRegistry(client, a.Config.Presence.LeaseTTL, a.Log)
	default:
		a.Registry = presence.NewMemoryRegistry(a.Config.Presence.LeaseTTL, nil)
	}

	a.Log.Infof("presence backend: %s (lease %v, remove on disconnect %v)",
		a.Config.Presence.Backend, a.Config.Presence.LeaseTTL, a.Config.Presence.RemoveOnDisconnect)
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnf("failed to close redis client: %v", err)
		}
	}
	a.Pool.Close()
	_ = a.Log.Close()
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
