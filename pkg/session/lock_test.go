package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		ns := fmt.Sprintf("list-%d", i)
		_ = mgr.Save(ctx, ns, domain.Todos{})
		_ = mgr.Reset(ctx, ns)
	}

	lockCount := len(mgr.locks)
	t.Logf("Namespaces Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Reset", lockCount)
	}
}
