package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/auth"
	"hrhelper/recruiter-service/internal/config"
	"hrhelper/recruiter-service/internal/db"
	"hrhelper/recruiter-service/internal/events"
	"hrhelper/recruiter-service/internal/recruiting"
	"hrhelper/recruiter-service/internal/store"
	"hrhelper/recruiter-service/internal/store/memory"
	"hrhelper/recruiter-service/internal/store/postgres"
)

// runtime holds the storage-backed collaborators every command needs.
type runtime struct {
	cfg        *config.Config
	log        *zap.Logger
	store      store.Store
	sessions   auth.SessionStore
	pub        events.Publisher
	recruiting *recruiting.Service
	identity   *auth.Service
	closers    []func()
}

// open connects to the configured storage. Close must be called when done.
func open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		rt.store = memory.New()
		rt.sessions = auth.NewMemorySessionStore()
		rt.pub = events.Nop{}

	default:
		log.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		log.Info("PostgreSQL connected")

		if cfg.Migrate {
			if err := db.Migrate(ctx, pool); err != nil {
				rt.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema up to date")
		}

		log.Info("connecting to Redis")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = rdb.Close() })
		log.Info("Redis connected")

		rt.store = postgres.New(pool)
		rt.sessions = auth.NewRedisSessionStore(rdb)
		rt.pub = events.NewRedisPublisher(rdb, log)
	}

	rt.recruiting = recruiting.NewService(rt.store, rt.pub, log)
	rt.identity = auth.NewService(rt.store, rt.sessions, cfg.JWTSecret, log, auth.WithSessionTTL(cfg.SessionTTL))
	return rt, nil
}

// Close releases connections in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
