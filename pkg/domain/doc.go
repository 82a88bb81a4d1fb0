/*
Package domain contains the core domain models and business logic for the todo list.

It defines the task records, the ordered collection that owns them, the view filter
and the explicit application state that the event reducer transforms. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Task: A single todo item (ID, Title, Completed).
  - Todos: The ordered collection of tasks and the pure queries over it.
  - Filter: The active view subset selector (all, active, completed).
  - State: The application state (Todos, Filter and the edit session of one row).
  - Event: A user interaction delivered to the reducer.
*/
package domain
