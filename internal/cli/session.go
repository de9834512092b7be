package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
)

// lockPrefix namespaces distributed session locks in Redis.
const lockPrefix = "turing:"

// setupPersistence builds the session store and, for Redis, the distributed
// locker selected by cfg. Sessions are sealed when an encryption key is
// configured. The returned close function releases connections.
func setupPersistence(ctx context.Context, cfg config.Config) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	store, locker, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	active, fallback, err := cfg.Keys()
	if err != nil || active == nil {
		return store, locker, closeFn, err
	}
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, nil, err
	}
	return middleware.Chain(store, seal), locker, closeFn, nil
}

func openStore(ctx context.Context, cfg config.Config) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case config.StoreFile:
		dir := cfg.SessionDir
		if dir == "" {
			dir = file.DefaultPath
		}
		return file.New(dir), nil, noop, nil
	case config.StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, redis.NewLocker(store.Client(), lockPrefix), store.Close, nil
	default:
		return memory.NewStore(), nil, noop, nil
	}
}

// NewSessionManager wires persistence and loader into a session manager.
func NewSessionManager(ctx context.Context, cfg config.Config, loader ports.DefinitionLoader, logger *slog.Logger, opts ...session.Option) (*session.Manager, func() error, error) {
	store, locker, closeFn, err := setupPersistence(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	base := []session.Option{
		session.WithLogger(logger),
		session.WithMaxSteps(cfg.MaxSteps),
	}
	if locker != nil {
		base = append(base, session.WithLocker(locker))
	}
	logger.Info("Session store ready", "store", cfg.Store)
	return session.NewManager(store, loader, append(base, opts...)...), closeFn, nil
}
