package loam

import (
	"context"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/todomvc/internal/testutils"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	_, repo := testutils.SetupTestRepo(t)
	return New(loam.NewTypedRepository[EntryMetadata](repo))
}

func TestStore_Contract(t *testing.T) {
	ports.RunKeyValueStoreContract(t, setupStore(t))
}

func TestStore_DeleteLeavesTombstone(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "todos-jquery", []byte(`[]`)))
	require.NoError(t, store.Delete(ctx, "todos-jquery"))

	_, err := store.Get(ctx, "todos-jquery")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	// Writing again revives the key.
	require.NoError(t, store.Set(ctx, "todos-jquery", []byte(`[{"id":"a"}]`)))
	got, err := store.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, "explicit", keyOf("whatever.md", EntryMetadata{Key: "explicit"}))
	assert.Equal(t, "a b", keyOf("a%20b.md", EntryMetadata{}))
	assert.Equal(t, "plain", keyOf("plain", EntryMetadata{}))
}
