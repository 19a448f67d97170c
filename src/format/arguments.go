package format

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ArgumentError lists the ways a set of arguments violates a tool schema.
type ArgumentError struct {
	Tool     string
	Problems []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, strings.Join(e.Problems, "; "))
}

// ValidateArguments checks args against the argument schema of a tool. A nil
// map is treated as an empty object.
func ValidateArguments(tool string, schema Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema.document()),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return &FormatError{Tool: tool, Reason: fmt.Sprintf("schema validation failed: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return &ArgumentError{Tool: tool, Problems: problems}
}

// document renders s for the validator, leaving out empty keywords that a
// strict meta schema would reject.
func (s Schema) document() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		ps := map[string]any{"type": p.Type}
		if p.Items != nil {
			ps["items"] = p.Items
		}
		if len(p.Enum) > 0 {
			ps["enum"] = p.Enum
		}
		props[name] = ps
	}
	doc := map[string]any{"type": "object", "properties": props}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	return doc
}
