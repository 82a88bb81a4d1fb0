package ports

import (
	"context"

	"github.com/aretw0/todomvc/pkg/domain"
	"github.com/aretw0/todomvc/pkg/render"
)

// Snapshot is the outcome of a dispatch: the new state, its rendered view and
// the changes relative to the previous state.
type Snapshot struct {
	Namespace string            `json:"namespace"`
	State     *domain.State     `json:"state"`
	View      render.View       `json:"view"`
	Outcome   Outcome           `json:"outcome"`
	Diff      *domain.TodosDiff `json:"diff,omitempty"`
}

// Outcome summarizes what an event did to the state.
type Outcome struct {
	Mutated bool               `json:"mutated"`
	Miss    bool               `json:"miss,omitempty"`
	Edit    domain.EditOutcome `json:"edit,omitempty"`
}

// Engine is the application surface used by the outer adapters (HTTP, MCP, CLI).
type Engine interface {
	// Dispatch reduces the event against the current state, renders and persists.
	Dispatch(ctx context.Context, event domain.Event) (*Snapshot, error)

	// Current renders the current state without changing it.
	Current(ctx context.Context) (*Snapshot, error)
}
