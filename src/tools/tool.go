package tools

import (
	"fmt"
	"strings"
)

// PropertyType is the primitive type tag the catalog service attaches to a
// tool property. The service emits either Python style tags ("str") or JSON
// Schema names ("string").
type PropertyType string

const (
	TypeStr   PropertyType = "str"
	TypeInt   PropertyType = "int"
	TypeFloat PropertyType = "float"
	TypeBool  PropertyType = "bool"
	TypeList  PropertyType = "list"
	TypeDict  PropertyType = "dict"

	TypeString  PropertyType = "string"
	TypeInteger PropertyType = "integer"
	TypeNumber  PropertyType = "number"
	TypeBoolean PropertyType = "boolean"
	TypeArray   PropertyType = "array"
	TypeObject  PropertyType = "object"
)

// jsonSchemaTypes maps every tag the service can emit to exactly one JSON
// Schema primitive.
var jsonSchemaTypes = map[PropertyType]string{
	TypeStr:     "string",
	TypeInt:     "integer",
	TypeFloat:   "number",
	TypeBool:    "boolean",
	TypeList:    "array",
	TypeDict:    "object",
	TypeString:  "string",
	TypeInteger: "integer",
	TypeNumber:  "number",
	TypeBoolean: "boolean",
	TypeArray:   "array",
	TypeObject:  "object",
}

// JSONSchemaType returns the JSON Schema primitive for t. The lookup is case
// insensitive and ignores surrounding whitespace; ok is false for any tag
// outside the fixed table.
func (t PropertyType) JSONSchemaType() (string, bool) {
	s, ok := jsonSchemaTypes[PropertyType(strings.ToLower(strings.TrimSpace(string(t))))]
	return s, ok
}

// IsJSONSchemaPrimitive reports whether s is one of the six JSON Schema
// primitive names used in provider tool schemas.
func IsJSONSchemaPrimitive(s string) bool {
	switch s {
	case "string", "integer", "number", "boolean", "array", "object":
		return true
	}
	return false
}

// Property describes one argument of a tool.
type Property struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        PropertyType `json:"type"`
	Required    bool         `json:"required"`
}

// Tool is the provider agnostic descriptor returned by the catalog endpoint.
type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Properties  []Property `json:"properties,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Toolkit     string     `json:"toolkit,omitempty"`
}

// RequiredNames returns the names of required properties in declaration order.
func (t Tool) RequiredNames() []string {
	names := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// CheckUnique returns an error naming the first tool name that appears more
// than once in names.
func CheckUnique(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("duplicate tool name %q in catalog", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
