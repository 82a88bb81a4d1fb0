package todomvc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/internal/runtime"
	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ids"
	"github.com/aretw0/todomvc/pkg/ports"
	"github.com/aretw0/todomvc/pkg/render"
	"github.com/aretw0/todomvc/pkg/route"
	"github.com/aretw0/todomvc/pkg/session"
	"github.com/aretw0/todomvc/pkg/storage"
)

// App is the high-level entry point: it owns one todo list and runs every
// event through load, reduce, render and save.
type App struct {
	runtime   *runtime.Engine
	sessions  *session.Manager
	renderer  *render.Renderer
	kv        ports.KeyValueStore
	ids       ids.Generator
	locker    ports.DistributedLocker
	namespace string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	// view holds the state that is not persisted (filter and edit session).
	// It is only touched while holding the namespace lock.
	mu   sync.Mutex
	view domain.State
}

var _ ports.Engine = (*App)(nil)

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithStore sets the key-value store the list is persisted in.
func WithStore(kv ports.KeyValueStore) Option {
	return func(a *App) {
		a.kv = kv
	}
}

// WithNamespace sets the key the list is stored under.
func WithNamespace(namespace string) Option {
	return func(a *App) {
		a.namespace = namespace
	}
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen ids.Generator) Option {
	return func(a *App) {
		a.ids = gen
	}
}

// WithRenderer replaces the default templates.
func WithRenderer(r *render.Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithLocker enables distributed locking of the list.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) {
		a.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *App) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// New initializes an App. Without options it keeps the list in memory under
// storage.DefaultNamespace.
func New(opts ...Option) (*App, error) {
	a := &App{
		namespace: storage.DefaultNamespace,
		view:      domain.State{Filter: domain.FilterAll},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	a.logger = a.logger.With("namespace", a.namespace)

	if a.kv == nil {
		a.kv = memory.NewStore()
	}
	if a.ids == nil {
		a.ids = ids.NewRandom(nil)
	}
	if a.renderer == nil {
		r, err := render.New()
		if err != nil {
			return nil, fmt.Errorf("failed to compile templates: %w", err)
		}
		a.renderer = r
	}

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	if a.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(a.locker))
	}
	a.sessions = session.NewManager(a.kv, sessionOpts...)
	a.runtime = runtime.NewEngine(a.ids, runtime.WithLogger(a.logger))

	return a, nil
}

// Namespace returns the key the list is stored under.
func (a *App) Namespace() string {
	return a.namespace
}

// Renderer returns the templates used for views.
func (a *App) Renderer() *render.Renderer {
	return a.renderer
}

// Sessions returns the manager guarding the list.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Start routes to fragment, or to the default route when it is empty,
// and renders the list. This is the first call of an interactive surface.
func (a *App) Start(ctx context.Context, fragment string) (*ports.Snapshot, error) {
	filter := domain.FilterAll
	route.New(func(f domain.Filter) { filter = f }).Init(fragment)
	return a.Dispatch(ctx, domain.Event{Type: domain.EventRoute, Filter: filter})
}

// Navigate routes to fragment. Fragments that do not match the single
// "/:filter" route leave the state alone.
func (a *App) Navigate(ctx context.Context, fragment string) (*ports.Snapshot, error) {
	var filter domain.Filter
	if !route.New(func(f domain.Filter) { filter = f }).Navigate(fragment) {
		a.logger.Debug("Ignoring unmatched route", "fragment", fragment)
		return a.Current(ctx)
	}
	return a.Dispatch(ctx, domain.Event{Type: domain.EventRoute, Filter: filter})
}

// Dispatch reduces event against the stored list, renders the result and
// saves the list. Every dispatch persists, even when nothing changed.
func (a *App) Dispatch(ctx context.Context, event domain.Event) (*ports.Snapshot, error) {
	var snap *ports.Snapshot
	err := a.sessions.WithLock(ctx, a.namespace, func(ctx context.Context) error {
		var err error
		snap, err = a.apply(ctx, event)
		return err
	})
	if err != nil {
		a.logger.Error("Dispatch failed", "type", event.Type, "err", err)
		return nil, err
	}
	return snap, nil
}

// apply runs one load→reduce→render→save cycle. The namespace lock must be held.
func (a *App) apply(ctx context.Context, event domain.Event) (*ports.Snapshot, error) {
	store := a.sessions.Storage(a.namespace)

	current, err := a.load(ctx, store)
	if err != nil {
		return nil, err
	}

	next, outcome, err := a.runtime.Reduce(ctx, current, event)
	if err != nil {
		return nil, fmt.Errorf("reduce %s: %w", event.Type, err)
	}

	view, err := a.render(ctx, next)
	if err != nil {
		return nil, err
	}

	if err := store.Save(ctx, next.Todos); err != nil {
		return nil, err
	}
	a.remember(next)

	if a.hooks.OnDispatch != nil {
		a.hooks.OnDispatch(ctx, &domain.DispatchEvent{
			Timestamp: time.Now(),
			Namespace: a.namespace,
			Event:     event,
			Mutated:   outcome.Mutated,
			Miss:      outcome.Miss,
			Edit:      outcome.Edit,
		})
	}

	return &ports.Snapshot{
		Namespace: a.namespace,
		State:     next,
		View:      view,
		Outcome:   outcome,
		Diff:      domain.Diff(a.namespace, current, next),
	}, nil
}

// Current renders the stored list without changing or saving it.
func (a *App) Current(ctx context.Context) (*ports.Snapshot, error) {
	var snap *ports.Snapshot
	err := a.sessions.WithLock(ctx, a.namespace, func(ctx context.Context) error {
		current, err := a.load(ctx, a.sessions.Storage(a.namespace))
		if err != nil {
			return err
		}
		view, err := a.render(ctx, current)
		if err != nil {
			return err
		}
		snap = &ports.Snapshot{Namespace: a.namespace, State: current, View: view}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Page renders the full HTML document of a snapshot.
func (a *App) Page(snap *ports.Snapshot) (string, error) {
	return a.renderer.Page(snap.View)
}

// Add creates a task, as if title was typed and Enter pressed.
func (a *App) Add(ctx context.Context, title string) (*ports.Snapshot, error) {
	return a.Dispatch(ctx, domain.Event{Type: domain.EventCreate, Key: domain.KeyEnter, Title: title})
}

// Toggle flips the completion of a task.
func (a *App) Toggle(ctx context.Context, id string) (*ports.Snapshot, error) {
	return a.Dispatch(ctx, domain.Event{Type: domain.EventToggle, ID: id})
}

// ToggleAll sets the completion of every task.
func (a *App) ToggleAll(ctx context.Context, checked bool) (*ports.Snapshot, error) {
	return a.Dispatch(ctx, domain.Event{Type: domain.EventToggleAll, Checked: checked})
}

// Remove deletes a task.
func (a *App) Remove(ctx context.Context, id string) (*ports.Snapshot, error) {
	return a.Dispatch(ctx, domain.Event{Type: domain.EventDestroy, ID: id})
}

// ClearCompleted deletes every completed task.
func (a *App) ClearCompleted(ctx context.Context) (*ports.Snapshot, error) {
	return a.Dispatch(ctx, domain.Event{Type: domain.EventClearCompleted})
}

// Update edits the title of a task in one go: it opens the row for editing and
// commits title with Enter. An empty title deletes the task.
// Both events run under a single namespace lock, so no other event lands in between.
func (a *App) Update(ctx context.Context, id, title string) (*ports.Snapshot, error) {
	var snap *ports.Snapshot
	err := a.sessions.WithLock(ctx, a.namespace, func(ctx context.Context) error {
		start, err := a.apply(ctx, domain.Event{Type: domain.EventEditStart, ID: id})
		if err != nil {
			return err
		}
		if start.Outcome.Miss {
			snap = start
			return nil
		}
		snap, err = a.apply(ctx, domain.Event{Type: domain.EventEditKey, ID: id, Key: domain.KeyEnter, Title: title})
		return err
	})
	if err != nil {
		a.logger.Error("Update failed", "id", id, "err", err)
		return nil, err
	}
	return snap, nil
}

func (a *App) load(ctx context.Context, store *storage.Adapter) (*domain.State, error) {
	todos, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	state := &domain.State{Todos: todos, Filter: a.view.Filter}
	if a.view.Editing != nil && todos.Index(a.view.Editing.ID) >= 0 {
		edit := *a.view.Editing
		state.Editing = &edit
	}
	return state, nil
}

func (a *App) remember(state *domain.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Filter = state.Filter
	a.view.Editing = nil
	if state.Editing != nil {
		edit := *state.Editing
		a.view.Editing = &edit
	}
}

func (a *App) render(ctx context.Context, state *domain.State) (render.View, error) {
	start := time.Now()
	view, err := a.renderer.Render(state)
	if err != nil {
		return render.View{}, err
	}
	if a.hooks.OnRender != nil {
		a.hooks.OnRender(ctx, &domain.RenderEvent{
			Timestamp: start,
			Namespace: a.namespace,
			Total:     view.Total,
			Active:    view.Active,
			Duration:  time.Since(start),
		})
	}
	return view, nil
}
