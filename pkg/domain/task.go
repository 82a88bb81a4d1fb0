package domain

import "strings"

// Task is one todo item. Its identity is the ID, never its position in Todos.
type Task struct {
	ID        string `json:"id" yaml:"id" mapstructure:"id"`
	Title     string `json:"title" yaml:"title" mapstructure:"title"`
	Completed bool   `json:"completed" yaml:"completed" mapstructure:"completed"`
}

// Todos is the ordered collection of tasks. Insertion order is the display order.
//
// Every operation returns a new slice and leaves the receiver untouched, so a
// Todos value can be shared between an old and a new State safely.
type Todos []Task

// NormalizeTitle trims surrounding whitespace from a title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// Clone returns a copy of the collection.
func (t Todos) Clone() Todos {
	if t == nil {
		return Todos{}
	}
	out := make(Todos, len(t))
	copy(out, t)
	return out
}

// Index returns the position of the task with the given ID, or -1.
func (t Todos) Index(id string) int {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the task with the given ID.
func (t Todos) Find(id string) (Task, bool) {
	i := t.Index(id)
	if i < 0 {
		return Task{}, false
	}
	return t[i], true
}

// Add appends a new active task. A title that is empty after trimming is rejected
// with ErrEmptyTitle and the collection is returned unchanged.
func (t Todos) Add(id, title string) (Todos, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return t, ErrEmptyTitle
	}
	out := make(Todos, len(t), len(t)+1)
	copy(out, t)
	return append(out, Task{ID: id, Title: title, Completed: false}), nil
}

// Toggle flips the completion flag of the task with the given ID.
func (t Todos) Toggle(id string) (Todos, error) {
	i := t.Index(id)
	if i < 0 {
		return t, ErrTaskNotFound
	}
	out := t.Clone()
	out[i].Completed = !out[i].Completed
	return out, nil
}

// Update replaces the title of a task. An empty title removes the task instead.
func (t Todos) Update(id, title string) (Todos, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return t.Remove(id)
	}
	i := t.Index(id)
	if i < 0 {
		return t, ErrTaskNotFound
	}
	out := t.Clone()
	out[i].Title = title
	return out, nil
}

// Remove deletes the task with the given ID.
func (t Todos) Remove(id string) (Todos, error) {
	i := t.Index(id)
	if i < 0 {
		return t, ErrTaskNotFound
	}
	out := make(Todos, 0, len(t)-1)
	out = append(out, t[:i]...)
	return append(out, t[i+1:]...), nil
}

// SetAllCompleted sets the completion flag of every task to value.
func (t Todos) SetAllCompleted(value bool) Todos {
	out := t.Clone()
	for i := range out {
		out[i].Completed = value
	}
	return out
}

// RemoveCompleted keeps only the active tasks.
func (t Todos) RemoveCompleted() Todos {
	return t.Active()
}

// Active returns the tasks that are not completed, in order.
func (t Todos) Active() Todos {
	return t.where(func(task Task) bool { return !task.Completed })
}

// Completed returns the completed tasks, in order.
func (t Todos) Completed() Todos {
	return t.where(func(task Task) bool { return task.Completed })
}

// Filtered returns the subset selected by the filter.
func (t Todos) Filtered(f Filter) Todos {
	switch f {
	case FilterActive:
		return t.Active()
	case FilterCompleted:
		return t.Completed()
	default:
		return t.Clone()
	}
}

func (t Todos) where(keep func(Task) bool) Todos {
	out := make(Todos, 0, len(t))
	for _, task := range t {
		if keep(task) {
			out = append(out, task)
		}
	}
	return out
}
