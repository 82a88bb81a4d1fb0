package domain

import (
	"context"
	"time"
)

// EventType names a user interaction.
type EventType string

const (
	EventCreate         EventType = "create"
	EventToggle         EventType = "toggle"
	EventToggleAll      EventType = "toggle_all"
	EventDestroy        EventType = "destroy"
	EventClearCompleted EventType = "clear_completed"
	EventEditStart      EventType = "edit_start"
	EventEditKey        EventType = "edit_key"
	EventEditBlur       EventType = "edit_blur"
	EventRoute          EventType = "route"
)

// Key is the key carried by keyboard events.
type Key string

const (
	KeyEnter  Key = "Enter"
	KeyEscape Key = "Escape"
)

// Event is a single user interaction. Fields not relevant to the Type are ignored.
type Event struct {
	Type EventType `json:"type"`
	// ID is the task the event targets (toggle, destroy, edit_*).
	ID string `json:"id,omitempty"`
	// Title is the current value of the input (create, edit_key, edit_blur).
	Title string `json:"title,omitempty"`
	// Key is the key released (create, edit_key).
	Key Key `json:"key,omitempty"`
	// Checked is the state of the toggle-all checkbox.
	Checked bool `json:"checked,omitempty"`
	// Filter is the route target.
	Filter Filter `json:"filter,omitempty"`
}

// EditOutcome is where an editing row ended up.
type EditOutcome string

const (
	EditNone      EditOutcome = ""
	EditStarted   EditOutcome = "editing"
	EditCommitted EditOutcome = "committed"
	EditAborted   EditOutcome = "aborted"
	EditDeleted   EditOutcome = "deleted"
)

// DispatchEvent describes a reduced event for observability hooks.
type DispatchEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Namespace string      `json:"namespace"`
	Event     Event       `json:"event"`
	Mutated   bool        `json:"mutated"`
	Miss      bool        `json:"miss,omitempty"`
	Edit      EditOutcome `json:"edit,omitempty"`
}

// RenderEvent describes a completed render.
type RenderEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Namespace string        `json:"namespace"`
	Total     int           `json:"total"`
	Active    int           `json:"active"`
	Duration  time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for observability.
type LifecycleHooks struct {
	OnDispatch func(context.Context, *DispatchEvent)
	OnRender   func(context.Context, *RenderEvent)
}
