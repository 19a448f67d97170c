package format

import (
	"github.com/mix-tools/mix-tools-go/src/json"
	"github.com/mix-tools/mix-tools-go/src/tools"
)

// PropertySchema is the JSON Schema of one tool argument.
type PropertySchema struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Items       map[string]any `json:"items,omitempty"`
	Enum        []any          `json:"enum,omitempty"`
}

// Schema is the object schema both providers use for tool arguments.
type Schema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// OpenAITool is one entry of the OpenAI "tools" request array.
type OpenAITool struct {
	Type     string         `json:"type"`
	Function OpenAIFunction `json:"function"`
}

// OpenAIFunction is the function definition inside an OpenAITool.
type OpenAIFunction struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// AnthropicTool is one entry of the Anthropic "tools" request array.
type AnthropicTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"input_schema"`
}

// BuildSchema constructs the argument schema of tool. It is the only place
// where property types are mapped and required names are computed.
func BuildSchema(tool tools.Tool) (Schema, error) {
	s := Schema{
		Type:       "object",
		Properties: make(map[string]PropertySchema, len(tool.Properties)),
	}
	for _, p := range tool.Properties {
		if p.Name == "" {
			return Schema{}, &FormatError{Tool: tool.Name, Reason: "property without a name"}
		}
		if _, dup := s.Properties[p.Name]; dup {
			return Schema{}, &FormatError{Tool: tool.Name, Property: p.Name, Reason: "duplicate property"}
		}
		jsType, ok := p.Type.JSONSchemaType()
		if !ok {
			return Schema{}, &FormatError{Tool: tool.Name, Property: p.Name, Type: string(p.Type), Reason: "unmapped property type"}
		}
		s.Properties[p.Name] = PropertySchema{Type: jsType, Description: p.Description}
	}
	s.Required = tool.RequiredNames()
	return s, nil
}

// ToOpenAI translates a native descriptor into the OpenAI function shape.
func ToOpenAI(tool tools.Tool) (OpenAITool, error) {
	s, err := BuildSchema(tool)
	if err != nil {
		return OpenAITool{}, withFormat(err, OpenAI)
	}
	return OpenAITool{
		Type: "function",
		Function: OpenAIFunction{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  s,
		},
	}, nil
}

// ToAnthropic translates a native descriptor into the Anthropic tool shape.
func ToAnthropic(tool tools.Tool) (AnthropicTool, error) {
	s, err := BuildSchema(tool)
	if err != nil {
		return AnthropicTool{}, withFormat(err, Anthropic)
	}
	return AnthropicTool{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: s,
	}, nil
}

// Translate returns the shape of tool selected by f: the descriptor itself
// for Native, OpenAITool or AnthropicTool otherwise.
func Translate(f Format, tool tools.Tool) (any, error) {
	switch f {
	case Native:
		return tool, nil
	case OpenAI:
		return ToOpenAI(tool)
	case Anthropic:
		return ToAnthropic(tool)
	}
	return nil, &FormatError{Format: f, Tool: tool.Name, Reason: "unknown format"}
}

// ValidateOpenAI checks a provider shaped entry received from the catalog.
func ValidateOpenAI(t OpenAITool) error {
	if t.Type != "function" {
		return &FormatError{Format: OpenAI, Tool: t.Function.Name, Type: t.Type, Reason: `tool type must be "function"`}
	}
	if t.Function.Name == "" {
		return &FormatError{Format: OpenAI, Reason: "function without a name"}
	}
	return withFormat(t.Function.Parameters.validate(t.Function.Name), OpenAI)
}

// ValidateAnthropic checks a provider shaped entry received from the catalog.
func ValidateAnthropic(t AnthropicTool) error {
	if t.Name == "" {
		return &FormatError{Format: Anthropic, Reason: "tool without a name"}
	}
	return withFormat(t.InputSchema.validate(t.Name), Anthropic)
}

func (s Schema) validate(tool string) error {
	if s.Type != "object" {
		return &FormatError{Tool: tool, Type: s.Type, Reason: `schema type must be "object"`}
	}
	for name, p := range s.Properties {
		if !tools.IsJSONSchemaPrimitive(p.Type) {
			return &FormatError{Tool: tool, Property: name, Type: p.Type, Reason: "not a JSON Schema primitive"}
		}
	}
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return &FormatError{Tool: tool, Property: name, Reason: "required property is not declared"}
		}
	}
	return nil
}

func withFormat(err error, f Format) error {
	if fe, ok := err.(*FormatError); ok && fe.Format == "" {
		fe.Format = f
	}
	return err
}

// DecodeOpenAI decodes and validates one provider shaped catalog entry.
func DecodeOpenAI(raw json.RawMessage) (OpenAITool, error) {
	var t OpenAITool
	if err := json.Unmarshal(raw, &t); err != nil {
		return OpenAITool{}, &FormatError{Format: OpenAI, Reason: err.Error()}
	}
	if err := ValidateOpenAI(t); err != nil {
		return OpenAITool{}, err
	}
	t.Function.Parameters = t.Function.Parameters.withDefaults()
	return t, nil
}

// DecodeAnthropic decodes and validates one provider shaped catalog entry.
func DecodeAnthropic(raw json.RawMessage) (AnthropicTool, error) {
	var t AnthropicTool
	if err := json.Unmarshal(raw, &t); err != nil {
		return AnthropicTool{}, &FormatError{Format: Anthropic, Reason: err.Error()}
	}
	if err := ValidateAnthropic(t); err != nil {
		return AnthropicTool{}, err
	}
	t.InputSchema = t.InputSchema.withDefaults()
	return t, nil
}

func (s Schema) withDefaults() Schema {
	if s.Properties == nil {
		s.Properties = map[string]PropertySchema{}
	}
	if s.Required == nil {
		s.Required = []string{}
	}
	return s
}
