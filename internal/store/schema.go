package store

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/petems/snapclick/internal/scheme"
)

const schemaURL = "schemes.schema.json"

//go:embed schemes.schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// decode parses a scheme file. The document is checked against the
// embedded JSON schema first so hand edits fail with a useful message,
// then every scheme must pass scheme.Validate.
func decode(data []byte) ([]scheme.Scheme, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scheme file: %w", err)
	}

	sch, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile scheme file schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid scheme file: %w", err)
	}

	var schemes []scheme.Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("failed to parse scheme file: %w", err)
	}
	for _, s := range schemes {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("invalid scheme %q: %w", s.Name, err)
		}
	}
	return schemes, nil
}
