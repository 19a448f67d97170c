// Package toolcall turns provider responses into a tagged sequence of text
// and tool-use blocks, decided once at the response boundary.
package toolcall

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mix-tools/mix-tools-go/src/json"
)

// Kind tags a Block.
type Kind int

const (
	KindText Kind = iota
	KindToolUse
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindToolUse:
		return "tool_use"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Request is one tool invocation asked for by a model.
type Request struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Block is either text (Text set) or a tool use (ToolUse set), as told by
// Kind.
type Block struct {
	Kind    Kind
	Text    string
	ToolUse *Request
}

func TextBlock(text string) Block {
	return Block{Kind: KindText, Text: text}
}

func ToolUseBlock(req Request) Block {
	return Block{Kind: KindToolUse, ToolUse: &req}
}

// ToolUses returns the tool-use requests of blocks in order.
func ToolUses(blocks []Block) []Request {
	var out []Request
	for _, b := range blocks {
		if b.Kind == KindToolUse && b.ToolUse != nil {
			out = append(out, *b.ToolUse)
		}
	}
	return out
}

// Text joins the text blocks with newlines.
func Text(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if b.Kind == KindText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// decodeArguments parses a JSON object of arguments. Empty input and null
// yield an empty map.
func decodeArguments(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
