package toolcall

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/json"
)

// FromAnthropic converts message content into blocks. Block types other than
// text and tool_use (thinking, server tools) are skipped.
func FromAnthropic(content []anthropic.ContentBlockUnion) ([]Block, error) {
	blocks := make([]Block, 0, len(content))
	for _, cb := range content {
		switch cb.Type {
		case "text":
			blocks = append(blocks, TextBlock(cb.AsText().Text))
		case "tool_use":
			tu := cb.AsToolUse()
			raw, err := json.Marshal(tu.Input)
			if err != nil {
				return nil, fmt.Errorf("tool use %s (%s): %w", tu.ID, tu.Name, err)
			}
			args, err := decodeArguments(raw)
			if err != nil {
				return nil, fmt.Errorf("tool use %s (%s): %w", tu.ID, tu.Name, err)
			}
			blocks = append(blocks, ToolUseBlock(Request{ID: tu.ID, Name: tu.Name, Arguments: args}))
		}
	}
	return blocks, nil
}

// AnthropicTools converts a catalog in Anthropic format into request tools.
func AnthropicTools(list []format.AnthropicTool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(list))
	for _, t := range list {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.InputSchema.Properties,
				Required:   t.InputSchema.Required,
			},
		}})
	}
	return out
}

// AnthropicMessage converts a wrapped tool result into a user message. The
// SDK only carries text tool results, so each structured result is sent as
// its canonical JSON text.
func AnthropicMessage(m format.AnthropicToolResultMessage) (anthropic.MessageParam, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
	for _, b := range m.Content {
		text, err := format.Render(b.Content)
		if err != nil {
			return anthropic.MessageParam{}, fmt.Errorf("tool result %s: %w", b.ToolUseID, err)
		}
		blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, text, b.IsError))
	}
	return anthropic.NewUserMessage(blocks...), nil
}
