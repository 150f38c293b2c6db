package main

import (
	"context"
	"fmt"

	"github.com/LuanAssis01/sgi-maraba/internal/config"
	"github.com/LuanAssis01/sgi-maraba/internal/db"
	"github.com/LuanAssis01/sgi-maraba/internal/pubsub"
	"github.com/LuanAssis01/sgi-maraba/internal/schema"
	"github.com/LuanAssis01/sgi-maraba/internal/sequence"
	"github.com/LuanAssis01/sgi-maraba/internal/service"
	"github.com/LuanAssis01/sgi-maraba/internal/storage"
	"github.com/LuanAssis01/sgi-maraba/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is one session: a loaded store and the services acting on it
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	blobs storage.Blobs
	pool  *db.Pool

	store         *store.Store
	bus           *pubsub.Bus
	requests      *service.RequestService
	notifications *service.NotificationService
	auth          *service.AuthService

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	var seq sequence.Counter = sequence.NewMemoryCounter()
	switch cfg.StorageBackend {
	case config.BackendMemory:
		a.blobs = storage.NewMemoryBlobs()
	case config.BackendFile:
		blobs, err := storage.NewFileBlobs(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		a.blobs = blobs
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { rdb.Close() })
		a.blobs = storage.NewRedisBlobs(rdb, "")
		seq = sequence.NewRedisCounter(rdb, "")
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.pool = pool
		a.blobs = storage.NewPostgresBlobs(pool.Queries)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	schemas := schema.NewCompilerWithCache(cfg.SchemaCacheSize)
	a.store = store.New(a.blobs, schemas, log)
	if err := a.store.Load(ctx); err != nil {
		log.Warn("Some keys fell back to defaults", zap.Error(err))
	}

	a.bus = pubsub.New(log)
	a.requests = service.NewRequestService(a.store, seq, a.bus, log)
	if err := a.requests.Init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.notifications = service.NewNotificationService(a.store, log)
	a.notifications.Attach(a.bus)
	a.auth = service.NewAuthService(a.store, log)

	log.Debug("Session ready", zap.String("backend", cfg.StorageBackend))
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
