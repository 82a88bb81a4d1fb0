package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/persistence/middleware"
	"github.com/aretw0/todomvc/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunKeyValueStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	payload := []byte(`[{"id":"a","title":"my-secret-sauce","completed":false}]`)

	if err := secure.Set(ctx, "todos-jquery", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	stored, err := underlying.Get(ctx, "todos-jquery")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if strings.Contains(string(stored), "my-secret-sauce") {
		t.Fatalf("Expected title to be hidden, found: %s", stored)
	}
	if !strings.Contains(string(stored), `"encrypted"`) {
		t.Fatal("Expected encrypted envelope")
	}

	loaded, err := secure.Get(ctx, "todos-jquery")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if string(loaded) != string(payload) {
		t.Errorf("Expected %s, got %s", payload, loaded)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	old := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	if err := old.Set(ctx, "k", []byte("encrypted-with-old-key")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := rotated.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Load with rotation failed: %v", err)
	}
	if string(loaded) != "encrypted-with-old-key" {
		t.Errorf("Unexpected value: %s", loaded)
	}

	// Without the fallback the old value is unreadable.
	strict := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})(underlying)
	if _, err := strict.Get(ctx, "k"); err == nil {
		t.Fatal("Expected decryption to fail without fallback key")
	}
}

func TestEncryptionMiddleware_RefusesPlainValues(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	_ = underlying.Set(ctx, "k", []byte(`[]`))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	if _, err := secure.Get(ctx, "k"); err == nil {
		t.Fatal("Expected plain value to be refused")
	}
}

func TestEncryptionMiddleware_MissingKeyPassesThrough(t *testing.T) {
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(memory.NewStore())
	if _, err := secure.Get(context.Background(), "nope"); err != domain.ErrKeyNotFound {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestKeyFromPassphrase(t *testing.T) {
	k := middleware.KeyFromPassphrase("hunter2")
	if len(k) != 32 {
		t.Fatalf("Expected 32 byte key, got %d", len(k))
	}
	if string(k) != string(middleware.KeyFromPassphrase("hunter2")) {
		t.Fatal("Expected derivation to be stable")
	}
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.KeyValueStore) ports.KeyValueStore {
			return &recording{KeyValueStore: next, name: name, order: &order}
		}
	}

	store := middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	_ = store.Set(context.Background(), "k", []byte("v"))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("Unexpected order: %v", order)
	}
}

type recording struct {
	ports.KeyValueStore
	name  string
	order *[]string
}

func (r *recording) Set(ctx context.Context, key string, value []byte) error {
	*r.order = append(*r.order, r.name)
	return r.KeyValueStore.Set(ctx, key, value)
}
