package format

import (
	"fmt"

	"github.com/mix-tools/mix-tools-go/src/json"
)

// OpenAIToolMessage is the chat message OpenAI expects after a tool call.
type OpenAIToolMessage struct {
	Role       string `json:"role"`
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

// AnthropicToolResultBlock is a tool_result content block. Content holds the
// raw result as structured JSON.
type AnthropicToolResultBlock struct {
	Type      string          `json:"type"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error,omitempty"`
}

// AnthropicToolResultMessage is the user turn carrying tool results back to
// the model.
type AnthropicToolResultMessage struct {
	Role    string                     `json:"role"`
	Content []AnthropicToolResultBlock `json:"content"`
}

// CorrelationID returns the tool_use_id of the first block.
func (m AnthropicToolResultMessage) CorrelationID() string {
	if len(m.Content) == 0 {
		return ""
	}
	return m.Content[0].ToolUseID
}

// Render returns the canonical string form of a raw result: compact JSON with
// sorted keys. Equal results always render to identical strings.
func Render(result any) (string, error) {
	b, err := json.Canonical(result)
	if err != nil {
		return "", fmt.Errorf("render tool result: %w", err)
	}
	return string(b), nil
}

// OpenAIResult wraps result as a role "tool" message.
func OpenAIResult(id string, result any) (OpenAIToolMessage, error) {
	content, err := Render(result)
	if err != nil {
		return OpenAIToolMessage{}, err
	}
	return OpenAIToolMessage{Role: "tool", ToolCallID: id, Content: content}, nil
}

// AnthropicResult wraps result as a user message with one tool_result block.
func AnthropicResult(id string, result any) (AnthropicToolResultMessage, error) {
	b, err := json.Canonical(result)
	if err != nil {
		return AnthropicToolResultMessage{}, fmt.Errorf("render tool result: %w", err)
	}
	return AnthropicToolResultMessage{
		Role: "user",
		Content: []AnthropicToolResultBlock{{
			Type:      "tool_result",
			ToolUseID: id,
			Content:   json.RawMessage(b),
		}},
	}, nil
}

// Wrap dispatches to the envelope builder of f. Native returns result as is.
func Wrap(f Format, id string, result any) (any, error) {
	switch f {
	case Native:
		return result, nil
	case OpenAI:
		return OpenAIResult(id, result)
	case Anthropic:
		return AnthropicResult(id, result)
	}
	return nil, &FormatError{Format: f, Reason: "unknown format"}
}

// envelopePeek holds the discriminating members of every envelope shape.
type envelopePeek struct {
	Role       string          `json:"role"`
	Type       string          `json:"type"`
	ToolCallID string          `json:"tool_call_id"`
	Content    json.RawMessage `json:"content"`
}

// Unwrap recognises a body that the execute endpoint already shaped for f.
// ok is false when body is a plain {"result": ...} payload.
func Unwrap(f Format, body json.RawMessage) (envelope any, ok bool, err error) {
	var head envelopePeek
	if err := json.Unmarshal(body, &head); err != nil {
		// Not an object, so not an envelope.
		return nil, false, nil
	}
	switch f {
	case OpenAI:
		if head.Role != "tool" {
			return nil, false, nil
		}
		var m OpenAIToolMessage
		if err := json.Unmarshal(body, &m); err != nil {
			// content may be structured; render it canonically.
			m = OpenAIToolMessage{Role: head.Role, ToolCallID: head.ToolCallID}
			if m.Content, err = Render(head.Content); err != nil {
				return nil, false, err
			}
		}
		return m, true, nil
	case Anthropic:
		if head.Type == "tool_result" {
			var b AnthropicToolResultBlock
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, false, &FormatError{Format: f, Reason: err.Error()}
			}
			return AnthropicToolResultMessage{Role: "user", Content: []AnthropicToolResultBlock{b}}, true, nil
		}
		if head.Role == "user" {
			var m AnthropicToolResultMessage
			if err := json.Unmarshal(body, &m); err != nil {
				return nil, false, &FormatError{Format: f, Reason: err.Error()}
			}
			if len(m.Content) == 0 || m.Content[0].Type != "tool_result" {
				return nil, false, &FormatError{Format: f, Reason: "user message without a tool_result block"}
			}
			return m, true, nil
		}
	}
	return nil, false, nil
}
