package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/internal/adapters/file"
	"github.com/aretw0/todomvc/internal/config"
	"github.com/aretw0/todomvc/pkg/adapters/loam"
	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/adapters/redis"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/persistence/middleware"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/aretw0/todomvc/pkg/render"
)

// Backend is an opened key-value store with its optional locker.
type Backend struct {
	Store  ports.KeyValueStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases connections held by the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend builds the store selected by cfg.Store.Driver and wraps it with
// encryption when a key is configured.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		b.Store = memory.NewStore()
	case config.DriverFile:
		b.Store = file.New(cfg.Store.Path)
	case config.DriverLoam:
		store, err := loam.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		b.Store = store
	case config.DriverRedis:
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB,
			redis.WithPrefix(cfg.Store.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Store.RedisAddr, err)
		}
		b.Store = store
		b.close = store.Close
		if cfg.Store.Lock {
			b.Locker = redis.NewLocker(store.Client(), cfg.Store.Prefix)
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.EncryptionKey != "" {
		fallbacks := make([][]byte, 0, len(cfg.EncryptionFallbackKeys))
		for _, k := range cfg.EncryptionFallbackKeys {
			fallbacks = append(fallbacks, middleware.KeyFromPassphrase(k))
		}
		b.Store = middleware.Chain(b.Store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    middleware.KeyFromPassphrase(cfg.EncryptionKey),
			FallbackKeys: fallbacks,
		}))
	}

	logger.Debug("Store opened", "driver", cfg.Store.Driver, "encrypted", cfg.EncryptionKey != "", "locking", b.Locker != nil)
	return b, nil
}

// NewApp opens the backend and builds an App bound to cfg.Namespace.
// The caller must Close the returned backend.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks domain.LifecycleHooks) (*todomvc.App, *Backend, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := render.New(render.WithTemplatesDir(cfg.TemplatesDir), render.WithTitle(cfg.Title))
	if err != nil {
		return nil, nil, errors.Join(err, backend.Close())
	}

	opts := []todomvc.Option{
		todomvc.WithStore(backend.Store),
		todomvc.WithNamespace(cfg.Namespace),
		todomvc.WithRenderer(renderer),
		todomvc.WithLogger(logger),
		todomvc.WithLifecycleHooks(hooks),
	}
	if backend.Locker != nil {
		opts = append(opts, todomvc.WithLocker(backend.Locker))
	}

	app, err := todomvc.New(opts...)
	if err != nil {
		return nil, nil, errors.Join(err, backend.Close())
	}
	return app, backend, nil
}
