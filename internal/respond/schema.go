package respond

import (
	"fmt"

	"github.com/kaptinlin/jsonschema"
)

// Schema is a compiled JSON Schema a structured response must satisfy.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles raw JSON Schema text. Call once at construction;
// compilation failures are configuration errors, not runtime ones.
func CompileSchema(raw []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks decoded JSON against the schema.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	result := s.compiled.Validate(data)
	if !result.IsValid() {
		return fmt.Errorf("%s", result.Error())
	}
	return nil
}
