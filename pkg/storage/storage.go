// Package storage persists the todo list under a namespaced key of a
// key-value store.
//
// The persisted layout is a JSON array of {id, title, completed} objects.
// Absent or malformed payloads load as an empty list.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ports"
)

// DefaultNamespace is the key the list is stored under when none is given.
const DefaultNamespace = "todos-jquery"

// Adapter binds a KeyValueStore to one namespace.
type Adapter struct {
	kv        ports.KeyValueStore
	namespace string
	logger    *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to report malformed payloads.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Adapter. An empty namespace falls back to DefaultNamespace.
func New(kv ports.KeyValueStore, namespace string, opts ...Option) *Adapter {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	a := &Adapter{
		kv:        kv,
		namespace: namespace,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Namespace returns the key the list is stored under.
func (a *Adapter) Namespace() string {
	return a.namespace
}

// Load reads the list. Absent or malformed data yields an empty list;
// only infrastructure failures are returned.
func (a *Adapter) Load(ctx context.Context) (domain.Todos, error) {
	data, err := a.kv.Get(ctx, a.namespace)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.Todos{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.namespace, err)
	}

	todos, err := Decode(data)
	if err != nil {
		a.logger.Warn("Discarding malformed todo list", "namespace", a.namespace, "err", err)
		return domain.Todos{}, nil
	}
	return todos, nil
}

// Save overwrites the list.
func (a *Adapter) Save(ctx context.Context, todos domain.Todos) error {
	data, err := Encode(todos)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, a.namespace, data); err != nil {
		return fmt.Errorf("save %s: %w", a.namespace, err)
	}
	return nil
}

// Reset removes the list entirely.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.kv.Delete(ctx, a.namespace); err != nil {
		return fmt.Errorf("reset %s: %w", a.namespace, err)
	}
	return nil
}

// Raw returns the stored payload as is, for inspection.
func (a *Adapter) Raw(ctx context.Context) ([]byte, error) {
	return a.kv.Get(ctx, a.namespace)
}
