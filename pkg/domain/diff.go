package domain

// TodosDiff represents the changes between two versions of the list.
// It is designed to be serialized to JSON for partial updates on the client.
type TodosDiff struct {
	Namespace string `json:"namespace"`

	// Added holds new tasks in insertion order.
	Added []Task `json:"added,omitempty"`

	// Changed holds tasks whose title or completion changed (new values).
	Changed []Task `json:"changed,omitempty"`

	// Removed holds the IDs of deleted tasks.
	Removed []string `json:"removed,omitempty"`

	// Filter is set when the view filter changed.
	Filter *Filter `json:"filter,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, every task of newState is reported as added.
// Returns nil when nothing changed.
func Diff(namespace string, oldState, newState *State) *TodosDiff {
	if newState == nil {
		return nil
	}

	diff := &TodosDiff{Namespace: namespace}

	var before Todos
	if oldState != nil {
		before = oldState.Todos
		if oldState.Filter != newState.Filter {
			f := newState.Filter
			diff.Filter = &f
		}
	}

	seen := make(map[string]Task, len(before))
	for _, t := range before {
		seen[t.ID] = t
	}

	for _, t := range newState.Todos {
		old, ok := seen[t.ID]
		if !ok {
			diff.Added = append(diff.Added, t)
			continue
		}
		if old != t {
			diff.Changed = append(diff.Changed, t)
		}
		delete(seen, t.ID)
	}

	// Preserve the old order for removals.
	for _, t := range before {
		if _, gone := seen[t.ID]; gone {
			diff.Removed = append(diff.Removed, t.ID)
		}
	}

	if len(diff.Added) == 0 && len(diff.Changed) == 0 && len(diff.Removed) == 0 && diff.Filter == nil {
		return nil
	}
	return diff
}
