package llm

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompileSchema compiles a JSON schema document
func CompileSchema(name, src string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, eris.Wrap(err, "add schema")
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, eris.Wrap(err, "compile schema")
	}
	return schema, nil
}

// MustCompileSchema is CompileSchema for package-level schemas
func MustCompileSchema(name, src string) *jsonschema.Schema {
	schema, err := CompileSchema(name, src)
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateJSON parses data and checks it against schema.
// It returns the decoded document so callers can inspect it further.
func ValidateJSON(schema *jsonschema.Schema, data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrap(err, "unmarshal completion")
	}
	if err := schema.Validate(v); err != nil {
		return nil, eris.Wrap(err, "json does not match schema")
	}
	return v, nil
}
