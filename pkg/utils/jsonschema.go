// Package utils holds helpers shared by handler implementations and tests.
package utils

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema reflects T into a JSON Schema object suitable for a tool
// inputSchema. Definitions are inlined and the root carries neither $schema
// nor $id. Fields without omitempty are required; jsonschema struct tags
// such as description and minimum are honored.
func GenerateJSONSchema[T any]() (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(T))
	if s == nil {
		return nil, fmt.Errorf("cannot reflect schema for %T", *new(T))
	}
	s.Version = ""
	s.ID = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// MustGenerateJSONSchema is like GenerateJSONSchema but panics on error. It
// is meant for package-level tool descriptors.
func MustGenerateJSONSchema[T any]() json.RawMessage {
	schema, err := GenerateJSONSchema[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
