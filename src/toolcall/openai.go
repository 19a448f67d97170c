package toolcall

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mix-tools/mix-tools-go/src/format"
)

// FromOpenAI converts an assistant message into blocks: its content as one
// text block followed by one tool-use block per function call.
func FromOpenAI(msg openai.ChatCompletionMessage) ([]Block, error) {
	var blocks []Block
	if msg.Content != "" {
		blocks = append(blocks, TextBlock(msg.Content))
	}
	for _, call := range msg.ToolCalls {
		if call.Type != "" && call.Type != openai.ToolTypeFunction {
			continue
		}
		args, err := decodeArguments([]byte(call.Function.Arguments))
		if err != nil {
			return nil, fmt.Errorf("tool call %s (%s): %w", call.ID, call.Function.Name, err)
		}
		blocks = append(blocks, ToolUseBlock(Request{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		}))
	}
	return blocks, nil
}

// OpenAITools converts a catalog in OpenAI format into request tools.
func OpenAITools(list []format.OpenAITool) []openai.Tool {
	out := make([]openai.Tool, 0, len(list))
	for _, t := range list {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  t.Function.Parameters,
			},
		})
	}
	return out
}

// OpenAIMessage converts a wrapped tool result into a chat message.
func OpenAIMessage(m format.OpenAIToolMessage) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}
}
