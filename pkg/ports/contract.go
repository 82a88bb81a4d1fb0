package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKeyValueStoreContract runs a suite of tests to verify that a KeyValueStore
// implementation adheres to the defined interface contract.
func RunKeyValueStoreContract(t *testing.T, store KeyValueStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Set and Get", func(t *testing.T) {
		value := []byte(`[{"id":"1","title":"Buy milk","completed":false}]`)

		err := store.Set(ctx, key, value)
		require.NoError(t, err, "Set should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, value, loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("first")))
		require.NoError(t, store.Set(ctx, key, []byte("second")))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run("Returned Value Is Isolated", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("stable")))

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		loaded[0] = 'X'

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("stable"), again)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, key, []byte("gone soon")))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrKeyNotFound, "Get after Delete should return ErrKeyNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Deleting a missing key should succeed")
	})

	t.Run("Keys", func(t *testing.T) {
		k1 := key + "-1"
		k2 := key + "-2"
		require.NoError(t, store.Set(ctx, k1, []byte("[]")))
		require.NoError(t, store.Set(ctx, k2, []byte("[]")))

		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
