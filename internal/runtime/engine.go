// Package runtime holds the event reducer: every user interaction is applied
// to an explicit application state, producing a new state.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/todomvc/internal/logging"
	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/ids"
	"github.com/aretw0/todomvc/pkg/ports"
)

// Engine reduces events against a state. It holds no state of its own.
type Engine struct {
	ids    ids.Generator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for no-op diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine that draws new task IDs from gen.
// A nil generator uses random version 4 UUIDs.
func NewEngine(gen ids.Generator, opts ...Option) *Engine {
	if gen == nil {
		gen = ids.NewRandom(nil)
	}
	e := &Engine{
		ids:    gen,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reduce applies event to state and returns the next state.
// The input state is never modified. Lookup misses and empty titles are
// no-ops reported through the Outcome, not errors.
func (e *Engine) Reduce(ctx context.Context, state *domain.State, event domain.Event) (*domain.State, ports.Outcome, error) {
	if state == nil {
		state = domain.NewState(nil)
	}
	next := state.Snapshot()
	next.Filter = next.Filter.Normalize()

	var outcome ports.Outcome
	var err error

	switch event.Type {
	case domain.EventCreate:
		err = e.create(next, event)
	case domain.EventToggle:
		next.Editing = nil
		next.Todos, err = next.Todos.Toggle(event.ID)
	case domain.EventToggleAll:
		next.Editing = nil
		next.Todos = next.Todos.SetAllCompleted(event.Checked)
	case domain.EventDestroy:
		next.Editing = nil
		next.Todos, err = next.Todos.Remove(event.ID)
	case domain.EventClearCompleted:
		next.Editing = nil
		next.Todos = next.Todos.RemoveCompleted()
		next.Filter = domain.FilterAll
	case domain.EventEditStart:
		outcome.Edit, err = startEdit(next, event.ID)
	case domain.EventEditKey:
		outcome.Edit, err = e.editKey(next, event)
	case domain.EventEditBlur:
		outcome.Edit, err = e.blur(next, event.ID, event.Title)
	case domain.EventRoute:
		next.Editing = nil
		next.Filter = event.Filter.Normalize()
	default:
		return state, outcome, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, event.Type)
	}

	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		e.logger.Debug("Event target not found", "type", event.Type, "id", event.ID)
		outcome.Miss = true
	case errors.Is(err, domain.ErrEmptyTitle):
		e.logger.Debug("Ignoring empty title", "type", event.Type)
	case err != nil:
		return state, ports.Outcome{}, err
	}

	outcome.Mutated = changed(state, next)
	return next, outcome, nil
}

func (e *Engine) create(next *domain.State, event domain.Event) error {
	if event.Key != domain.KeyEnter {
		return nil
	}
	title, err := SanitizeTitle(event.Title)
	if err != nil {
		return err
	}
	if domain.NormalizeTitle(title) == "" {
		return domain.ErrEmptyTitle
	}
	id, err := e.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate id: %w", err)
	}
	next.Editing = nil
	next.Todos, err = next.Todos.Add(id, title)
	return err
}

// startEdit moves a row from display to editing.
// Any other row that was being edited is dropped without committing.
func startEdit(next *domain.State, id string) (domain.EditOutcome, error) {
	if next.Todos.Index(id) < 0 {
		return domain.EditNone, domain.ErrTaskNotFound
	}
	next.Editing = &domain.EditSession{ID: id}
	return domain.EditStarted, nil
}

// editKey handles keys released in the edit input. Enter ends editing,
// Escape marks the session aborted and then ends editing. Other keys do nothing.
func (e *Engine) editKey(next *domain.State, event domain.Event) (domain.EditOutcome, error) {
	if !next.IsEditing(event.ID) {
		return domain.EditNone, nil
	}
	switch event.Key {
	case domain.KeyEnter:
		return e.blur(next, event.ID, event.Title)
	case domain.KeyEscape:
		next.Editing.Abort = true
		return e.blur(next, event.ID, event.Title)
	default:
		return domain.EditNone, nil
	}
}

// blur ends editing. An aborted session leaves the title as it was, even when
// the input was cleared. Otherwise an empty value deletes the task and any
// other value replaces its title.
func (e *Engine) blur(next *domain.State, id, value string) (domain.EditOutcome, error) {
	if !next.IsEditing(id) {
		return domain.EditNone, nil
	}
	session := next.Editing
	next.Editing = nil

	if session.Abort {
		return domain.EditAborted, nil
	}

	title, err := SanitizeTitle(value)
	if err != nil {
		next.Editing = session
		return domain.EditNone, err
	}

	if domain.NormalizeTitle(title) == "" {
		next.Todos, err = next.Todos.Remove(id)
		if err != nil {
			return domain.EditNone, err
		}
		return domain.EditDeleted, nil
	}

	next.Todos, err = next.Todos.Update(id, title)
	if err != nil {
		return domain.EditNone, err
	}
	return domain.EditCommitted, nil
}

func changed(before, after *domain.State) bool {
	if before.Filter.Normalize() != after.Filter {
		return true
	}
	if !slices.Equal(before.Todos, after.Todos) {
		return true
	}
	switch {
	case before.Editing == nil && after.Editing == nil:
		return false
	case before.Editing == nil || after.Editing == nil:
		return true
	default:
		return *before.Editing != *after.Editing
	}
}
