package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawOpenAPI []byte

var loadOpenAPI = sync.OnceValues(func() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawOpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed and validated OpenAPI document served at /openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	return loadOpenAPI()
}

// validateBody checks a JSON body against a named component schema.
func validateBody(schemaName string, body []byte) error {
	doc, err := loadOpenAPI()
	if err != nil {
		return err
	}
	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref.Value == nil {
		return fmt.Errorf("schema %q not found", schemaName)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return err
	}
	return ref.Value.VisitJSON(value)
}
