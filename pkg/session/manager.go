package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/aretw0/todomvc/pkg/storage"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to namespaced todo lists, ensuring that
// load, modify and save cycles on one namespace never interleave.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	kv ports.KeyValueStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager over the given key-value store.
func NewManager(kv ports.KeyValueStore, opts ...Option) *Manager {
	m := &Manager{
		kv:      kv,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(namespace) after unlocking.
func (m *Manager) acquire(namespace string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[namespace]
	if !exists {
		entry = &lockEntry{}
		m.locks[namespace] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(namespace string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[namespace]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, namespace)
	}
}

// Storage returns the storage adapter bound to namespace.
// Calls on it are not serialized; use WithLock for read-modify-write cycles.
func (m *Manager) Storage(namespace string) *storage.Adapter {
	return storage.New(m.kv, namespace, storage.WithLogger(m.logger))
}

// Load reads the list stored under namespace.
func (m *Manager) Load(ctx context.Context, namespace string) (domain.Todos, error) {
	var todos domain.Todos
	err := m.WithLock(ctx, namespace, func(ctx context.Context) error {
		var err error
		todos, err = m.Storage(namespace).Load(ctx)
		return err
	})
	return todos, err
}

// Save overwrites the list stored under namespace.
func (m *Manager) Save(ctx context.Context, namespace string, todos domain.Todos) error {
	return m.WithLock(ctx, namespace, func(ctx context.Context) error {
		return m.Storage(namespace).Save(ctx, todos)
	})
}

// Reset removes the list stored under namespace.
func (m *Manager) Reset(ctx context.Context, namespace string) error {
	return m.WithLock(ctx, namespace, func(ctx context.Context) error {
		return m.Storage(namespace).Reset(ctx)
	})
}

// List returns the namespaces present in the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.kv.Keys(ctx)
}

// Store returns the underlying key-value store.
func (m *Manager) Store() ports.KeyValueStore {
	return m.kv
}

// WithLock executes a function while holding the lock for the namespace.
func (m *Manager) WithLock(ctx context.Context, namespace string, fn func(context.Context) error) error {
	entry := m.acquire(namespace)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(namespace)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, namespace, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"namespace", namespace,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
