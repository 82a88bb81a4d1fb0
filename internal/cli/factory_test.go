package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/todomvc/internal/config"
	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) config.Config {
	cfg := config.Default()
	cfg.Store.Driver = driver
	cfg.Store.Path = t.TempDir()
	return cfg
}

func TestNewApp_Drivers(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, driver := range []string{config.DriverMemory, config.DriverFile, config.DriverLoam, config.DriverRedis} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			cfg.Store.RedisAddr = mr.Addr()
			cfg.Store.Lock = true
			ctx := context.Background()

			app, backend, err := NewApp(ctx, cfg, logging.NewNop(), domain.LifecycleHooks{})
			require.NoError(t, err)
			defer backend.Close()

			_, err = app.Add(ctx, "Buy milk")
			require.NoError(t, err)

			raw, err := backend.Store.Get(ctx, "todos-jquery")
			require.NoError(t, err)
			assert.Contains(t, string(raw), "Buy milk")

			if driver == config.DriverRedis {
				assert.NotNil(t, backend.Locker)
			} else {
				assert.Nil(t, backend.Locker)
			}
		})
	}
}

func TestOpenBackend_Encryption(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	cfg.EncryptionKey = "correct horse battery staple"
	ctx := context.Background()

	app, backend, err := NewApp(ctx, cfg, logging.NewNop(), domain.LifecycleHooks{})
	require.NoError(t, err)
	_, err = app.Add(ctx, "top secret")
	require.NoError(t, err)

	// Reading through the encrypted store works.
	raw, err := backend.Store.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "top secret")

	// Reading the same files without the key does not.
	cfg.EncryptionKey = ""
	plain, err := OpenBackend(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	stored, err := plain.Store.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.NotContains(t, string(stored), "top secret")
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	cfg := testConfig(t, config.DriverRedis)
	cfg.Store.RedisAddr = "127.0.0.1:1"

	_, err := OpenBackend(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "redis unreachable")
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "shout"
	_, err := NewLogger(cfg, false)
	assert.Error(t, err)

	logger, err := NewLogger(cfg, true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
