/*
Package todomvc is a server-side TodoMVC: a list of tasks that can be added,
edited, toggled and deleted, filtered by completion and persisted under a
namespaced key of a key-value store.

# Concept

Every user interaction is a typed event (domain.Event). The App loads the
list, reduces the event against an explicit state, renders the state through
logic-less templates and saves the list again. The same loop serves the HTML
app, the JSON API, the MCP tools and the command line.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/todomvc"
	)

	func main() {
		app, err := todomvc.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		if _, err := app.Add(ctx, "Buy milk"); err != nil {
			log.Fatal(err)
		}

		snap, err := app.Current(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(snap.View.Active, "left")
	}

# Persistence

Stores implement ports.KeyValueStore: memory, file, Redis and Loam backends
are provided, and pkg/persistence/middleware adds encryption at rest on top of
any of them. The list is stored as a JSON array of {id, title, completed}
objects; payloads that fail validation load as an empty list.
*/
package todomvc
