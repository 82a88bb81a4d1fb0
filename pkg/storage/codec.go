package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/todomvc/pkg/domain"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todos.schema.json
var schemaSource string

var todosSchema = jsonschema.MustCompileString("todos.schema.json", schemaSource)

// Encode serializes todos as a JSON array. A nil list encodes as [].
func Encode(todos domain.Todos) ([]byte, error) {
	if todos == nil {
		todos = domain.Todos{}
	}
	data, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("encode todos: %w", err)
	}
	return data, nil
}

// Decode parses and validates a persisted payload.
// Any structural problem, including two tasks sharing an ID, is reported as
// domain.ErrMalformedStore.
func Decode(data []byte) (domain.Todos, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedStore, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after list", domain.ErrMalformedStore)
	}
	if err := todosSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedStore, describe(err))
	}

	var todos domain.Todos
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedStore, err)
	}
	seen := make(map[string]struct{}, len(todos))
	for i, t := range todos {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: /%d: duplicate id %q", domain.ErrMalformedStore, i, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if todos == nil {
		todos = domain.Todos{}
	}
	return todos, nil
}

// describe returns the innermost schema violation, which is the readable one.
func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
