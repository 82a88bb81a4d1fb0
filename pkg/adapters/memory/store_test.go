package memory_test

import (
	"testing"

	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunKeyValueStoreContract(t, store)
}
