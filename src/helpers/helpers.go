package helpers

import (
	"errors"
	"fmt"

	"github.com/mix-tools/mix-tools-go/src/json"
)

// ErrMissingTools is returned when a catalog body has no "tools" member.
var ErrMissingTools = errors.New(`catalog response has no "tools" member`)

// SplitToolsResponse returns the elements of the "tools" array undecoded so
// each one can be inspected for its shape.
func SplitToolsResponse(body []byte) ([]json.RawMessage, error) {
	var resp struct {
		Tools *[]json.RawMessage `json:"tools"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if resp.Tools == nil {
		return nil, ErrMissingTools
	}
	return *resp.Tools, nil
}

// shapeProbe holds the members that tell the catalog shapes apart.
type shapeProbe struct {
	Function    json.RawMessage `json:"function"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// Shape names the layout of one catalog element.
type Shape int

const (
	ShapeNative Shape = iota
	ShapeOpenAI
	ShapeAnthropic
)

func (s Shape) String() string {
	switch s {
	case ShapeOpenAI:
		return "openai"
	case ShapeAnthropic:
		return "anthropic"
	}
	return "native"
}

// DetectShape inspects one catalog element. Elements with a "function"
// member are OpenAI shaped, elements with "input_schema" are Anthropic
// shaped, everything else is a native descriptor.
func DetectShape(raw json.RawMessage) (Shape, error) {
	var p shapeProbe
	if err := json.Unmarshal(raw, &p); err != nil {
		return ShapeNative, err
	}
	switch {
	case len(p.Function) > 0:
		return ShapeOpenAI, nil
	case len(p.InputSchema) > 0:
		return ShapeAnthropic, nil
	}
	return ShapeNative, nil
}

// ResultMember returns the "result" member of an execute response, or the
// whole body when it has none.
func ResultMember(body json.RawMessage) (json.RawMessage, bool) {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Result == nil {
		return body, false
	}
	return resp.Result, true
}
