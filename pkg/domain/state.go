package domain

// EditSession is the transient state of the row being edited.
// Abort is only set between an Escape key and the blur that follows it.
type EditSession struct {
	ID    string `json:"id"`
	Abort bool   `json:"abort,omitempty"`
}

// State is the explicit application state transformed by the event reducer.
// Only Todos is persisted; Filter and Editing live for the process.
type State struct {
	Todos   Todos        `json:"todos"`
	Filter  Filter       `json:"filter"`
	Editing *EditSession `json:"editing,omitempty"`
}

// NewState creates a state showing all of the given todos.
func NewState(todos Todos) *State {
	return &State{
		Todos:  todos.Clone(),
		Filter: FilterAll,
	}
}

// Snapshot returns a deep copy of the state.
func (s *State) Snapshot() *State {
	if s == nil {
		return nil
	}
	out := &State{
		Todos:  s.Todos.Clone(),
		Filter: s.Filter,
	}
	if s.Editing != nil {
		edit := *s.Editing
		out.Editing = &edit
	}
	return out
}

// IsEditing reports whether the task with the given ID is in the editing state.
func (s *State) IsEditing(id string) bool {
	return s.Editing != nil && s.Editing.ID == id
}
