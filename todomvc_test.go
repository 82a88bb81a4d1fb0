package todomvc_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/todomvc"
	"github.com/aretw0/todomvc/pkg/adapters/memory"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, opts ...todomvc.Option) (*todomvc.App, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	opts = append([]todomvc.Option{todomvc.WithStore(kv), todomvc.WithIDGenerator(ids.NewSequence("t"))}, opts...)
	app, err := todomvc.New(opts...)
	require.NoError(t, err)
	return app, kv
}

func TestApp_AddPersistsAndRenders(t *testing.T) {
	app, kv := newApp(t)
	ctx := context.Background()

	snap, err := app.Add(ctx, "Buy milk")
	require.NoError(t, err)
	assert.True(t, snap.Outcome.Mutated)
	assert.Contains(t, snap.View.Footer, "<strong>1</strong> item left")
	assert.Contains(t, snap.View.List, `data-id="t1"`)
	require.NotNil(t, snap.Diff)
	assert.Equal(t, []domain.Task{{ID: "t1", Title: "Buy milk"}}, snap.Diff.Added)

	raw, err := kv.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1","title":"Buy milk","completed":false}]`, string(raw))
}

func TestApp_EveryDispatchPersists(t *testing.T) {
	app, kv := newApp(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "todos-jquery")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)

	snap, err := app.Start(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, snap.State.Filter)
	assert.False(t, snap.View.MainVisible)

	raw, err := kv.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestApp_FilterSurvivesAcrossDispatches(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	_, _ = app.Add(ctx, "a")
	_, _ = app.Add(ctx, "b")
	_, _ = app.Toggle(ctx, "t1")

	snap, err := app.Navigate(ctx, "#/completed")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterCompleted, snap.State.Filter)
	assert.Contains(t, snap.View.List, `data-id="t1"`)
	assert.NotContains(t, snap.View.List, `data-id="t2"`)

	// Unmatched fragments leave the filter alone.
	snap, err = app.Navigate(ctx, "/completed/extra")
	require.NoError(t, err)
	assert.Equal(t, domain.FilterCompleted, snap.State.Filter)

	snap, err = app.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, snap.State.Filter)
	assert.Len(t, snap.State.Todos, 1)
}

func TestApp_EditFlow(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()
	_, _ = app.Add(ctx, "Buy milk")

	snap, err := app.Dispatch(ctx, domain.Event{Type: domain.EventEditStart, ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, domain.EditStarted, snap.Outcome.Edit)

	// Editing survives a read.
	current, err := app.Current(ctx)
	require.NoError(t, err)
	assert.True(t, current.State.IsEditing("t1"))

	snap, err = app.Dispatch(ctx, domain.Event{Type: domain.EventEditKey, ID: "t1", Key: domain.KeyEscape, Title: ""})
	require.NoError(t, err)
	assert.Equal(t, domain.EditAborted, snap.Outcome.Edit)
	assert.Equal(t, "Buy milk", snap.State.Todos[0].Title)

	snap, err = app.Update(ctx, "t1", "Buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, domain.EditCommitted, snap.Outcome.Edit)
	assert.Equal(t, "Buy oat milk", snap.State.Todos[0].Title)

	snap, err = app.Update(ctx, "t1", "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.EditDeleted, snap.Outcome.Edit)
	assert.Empty(t, snap.State.Todos)
}

func TestApp_UpdateMissingTask(t *testing.T) {
	app, _ := newApp(t)

	snap, err := app.Update(context.Background(), "ghost", "x")
	require.NoError(t, err)
	assert.True(t, snap.Outcome.Miss)
}

func TestApp_UpdateIsAtomicAgainstNavigation(t *testing.T) {
	var mu sync.Mutex
	var dispatched []domain.EventType

	app, _ := newApp(t, todomvc.WithLifecycleHooks(domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			mu.Lock()
			defer mu.Unlock()
			dispatched = append(dispatched, e.Event.Type)
		},
	}))
	ctx := context.Background()
	_, err := app.Add(ctx, "Walk dog")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			_, _ = app.Navigate(ctx, "/active")
			_, _ = app.Navigate(ctx, "/all")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			snap, err := app.Update(ctx, "t1", fmt.Sprintf("Walk dog %d", i))
			assert.NoError(t, err)
			if assert.NotNil(t, snap) {
				assert.Equal(t, domain.EditCommitted, snap.Outcome.Edit)
			}
		}
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, typ := range dispatched {
		if typ == domain.EventEditStart {
			require.Less(t, i+1, len(dispatched))
			assert.Equal(t, domain.EventEditKey, dispatched[i+1], "event %d", i)
		}
	}

	current, err := app.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Walk dog 24", current.State.Todos[0].Title)
}

func TestApp_Hooks(t *testing.T) {
	var mu sync.Mutex
	var dispatched []domain.EventType
	renders := 0

	app, _ := newApp(t, todomvc.WithLifecycleHooks(domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			mu.Lock()
			defer mu.Unlock()
			dispatched = append(dispatched, e.Event.Type)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			mu.Lock()
			defer mu.Unlock()
			renders++
		},
	}))
	ctx := context.Background()

	_, _ = app.Add(ctx, "a")
	_, _ = app.Toggle(ctx, "ghost")
	_, _ = app.Current(ctx)

	assert.Equal(t, []domain.EventType{domain.EventCreate, domain.EventToggle}, dispatched)
	assert.Equal(t, 3, renders)
}

func TestApp_MalformedStoreLoadsEmpty(t *testing.T) {
	app, kv := newApp(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "todos-jquery", []byte("{definitely not json")))

	snap, err := app.Current(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.State.Todos)

	// The next render overwrites the broken payload.
	_, err = app.Add(ctx, "fresh start")
	require.NoError(t, err)
	raw, err := kv.Get(ctx, "todos-jquery")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t1","title":"fresh start","completed":false}]`, string(raw))
}

func TestApp_Namespace(t *testing.T) {
	app, kv := newApp(t, todomvc.WithNamespace("groceries"))
	ctx := context.Background()

	_, err := app.Add(ctx, "eggs")
	require.NoError(t, err)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"groceries"}, keys)
}

type brokenStore struct{ *memory.Store }

func (b brokenStore) Set(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestApp_SaveFailureIsReturned(t *testing.T) {
	app, err := todomvc.New(todomvc.WithStore(brokenStore{memory.NewStore()}))
	require.NoError(t, err)

	_, err = app.Add(context.Background(), "x")
	assert.Error(t, err)
}

func TestApp_ConcurrentAddsAreSerialized(t *testing.T) {
	app, _ := newApp(t, todomvc.WithIDGenerator(ids.NewRandom(nil)))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := app.Add(ctx, "task")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := app.Current(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.State.Todos, 25)
}
