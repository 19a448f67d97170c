package mixtools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/helpers"
	"github.com/mix-tools/mix-tools-go/src/json"
	"github.com/mix-tools/mix-tools-go/src/toolcall"
	httptransport "github.com/mix-tools/mix-tools-go/src/transports/http"
)

// ExecuteResult is the outcome of one remote tool execution.
type ExecuteResult struct {
	Format        format.Format
	CorrelationID string

	// Raw is the response body exactly as returned.
	Raw json.RawMessage
	// Result is the "result" member of Raw, or Raw itself when it has none.
	Result json.RawMessage

	OpenAI    *format.OpenAIToolMessage
	Anthropic *format.AnthropicToolResultMessage
}

// Message returns the value to append to the provider conversation: the
// decoded body for Native, the provider envelope otherwise.
func (r *ExecuteResult) Message() any {
	switch {
	case r.OpenAI != nil:
		return *r.OpenAI
	case r.Anthropic != nil:
		return *r.Anthropic
	}
	v, err := json.Decode(r.Raw)
	if err != nil {
		return r.Raw
	}
	return v
}

// ExecuteTool runs toolName remotely with args as the JSON body. For the
// provider formats a correlation id is required; without one the call fails
// with an *InvocationError before any request is sent.
func (c *Client) ExecuteTool(ctx context.Context, toolName string, args map[string]any, opts ...CallOption) (*ExecuteResult, error) {
	o := newCallOptions(opts)
	if !o.format.Valid() {
		return nil, &FormatError{Format: o.format, Tool: toolName, Reason: "unknown format"}
	}
	if strings.TrimSpace(toolName) == "" {
		return nil, &InvocationError{Tool: toolName, Format: o.format, Err: errors.New("tool name is empty")}
	}
	if o.format.RequiresCorrelationID() && o.correlationID == "" {
		return nil, &InvocationError{Tool: toolName, Format: o.format, Err: ErrMissingCorrelationID}
	}
	if args == nil {
		args = map[string]any{}
	}

	path := "/tools/" + url.PathEscape(toolName) + "/execute"
	query := httptransport.Query{
		"format":       o.format.QueryValue(),
		"tool_call_id": o.correlationID,
	}
	body, err := c.session.Send(ctx, http.MethodPost, path, query, args)
	if err != nil {
		return nil, err
	}

	res := &ExecuteResult{Format: o.format, CorrelationID: o.correlationID, Raw: body}
	res.Result, _ = helpers.ResultMember(body)
	if o.format == format.Native {
		return res, nil
	}
	if err := res.wrap(toolName); err != nil {
		return nil, err
	}
	c.logger("executed %s (format %s, id %s)", toolName, o.format, o.correlationID)
	return res, nil
}

// wrap fills the provider envelope, reusing one the server already built.
func (r *ExecuteResult) wrap(toolName string) error {
	env, ok, err := format.Unwrap(r.Format, r.Raw)
	if err != nil {
		return err
	}
	if !ok {
		if env, err = format.Wrap(r.Format, r.CorrelationID, r.Result); err != nil {
			return err
		}
	}

	switch m := env.(type) {
	case format.OpenAIToolMessage:
		if m.ToolCallID == "" {
			m.ToolCallID = r.CorrelationID
		}
		if m.ToolCallID != r.CorrelationID {
			return r.mismatch(toolName, m.ToolCallID)
		}
		r.OpenAI = &m
	case format.AnthropicToolResultMessage:
		for i := range m.Content {
			if m.Content[i].ToolUseID == "" {
				m.Content[i].ToolUseID = r.CorrelationID
			}
		}
		if id := m.CorrelationID(); id != r.CorrelationID {
			return r.mismatch(toolName, id)
		}
		r.Anthropic = &m
	default:
		return &FormatError{Format: r.Format, Tool: toolName, Reason: fmt.Sprintf("unexpected envelope %T", env)}
	}
	return nil
}

func (r *ExecuteResult) mismatch(toolName, got string) error {
	return &InvocationError{
		Tool:   toolName,
		Format: r.Format,
		Err:    fmt.Errorf("envelope carries tool call id %q, expected %q", got, r.CorrelationID),
	}
}

// Invoke executes a model's tool-use request, using its id as correlation id.
func (c *Client) Invoke(ctx context.Context, req toolcall.Request, f format.Format) (*ExecuteResult, error) {
	return c.ExecuteTool(ctx, req.Name, req.Arguments, WithFormat(f), WithCorrelationID(req.ID))
}

// Outcome pairs a request with its result or error.
type Outcome struct {
	Request toolcall.Request
	Result  *ExecuteResult
	Err     error
}

// ExecuteAll runs independent requests concurrently over the client's
// session. Outcomes are returned in request order; a failed call does not
// cancel the others.
func (c *Client) ExecuteAll(ctx context.Context, reqs []toolcall.Request, f format.Format, opts ...CallOption) []Outcome {
	o := newCallOptions(opts)
	out := make([]Outcome, len(reqs))
	p := pool.New().WithMaxGoroutines(o.maxConcurrency)
	for i, req := range reqs {
		p.Go(func() {
			res, err := c.Invoke(ctx, req, f)
			out[i] = Outcome{Request: req, Result: res, Err: err}
		})
	}
	p.Wait()
	return out
}

// Messages collects the provider messages of successful outcomes in order and
// returns the first error encountered, if any.
func Messages(outcomes []Outcome) ([]any, error) {
	msgs := make([]any, 0, len(outcomes))
	var firstErr error
	for _, o := range outcomes {
		if o.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("tool %s (%s): %w", o.Request.Name, o.Request.ID, o.Err)
			}
			continue
		}
		msgs = append(msgs, o.Result.Message())
	}
	return msgs, firstErr
}
