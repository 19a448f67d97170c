package mixtools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/helpers"
	"github.com/mix-tools/mix-tools-go/src/json"
	"github.com/mix-tools/mix-tools-go/src/tag"
	"github.com/mix-tools/mix-tools-go/src/tools"
	httptransport "github.com/mix-tools/mix-tools-go/src/transports/http"
)

// Catalog is one listing of the service's tools. Exactly one of Tools,
// OpenAI and Anthropic is populated, according to Format.
type Catalog struct {
	Format    format.Format
	Tools     []tools.Tool
	OpenAI    []format.OpenAITool
	Anthropic []format.AnthropicTool
}

// Len returns the number of tools in the catalog.
func (c *Catalog) Len() int {
	switch c.Format {
	case format.OpenAI:
		return len(c.OpenAI)
	case format.Anthropic:
		return len(c.Anthropic)
	}
	return len(c.Tools)
}

// Names returns the tool names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, c.Len())
	switch c.Format {
	case format.OpenAI:
		for _, t := range c.OpenAI {
			names = append(names, t.Function.Name)
		}
	case format.Anthropic:
		for _, t := range c.Anthropic {
			names = append(names, t.Name)
		}
	default:
		for _, t := range c.Tools {
			names = append(names, t.Name)
		}
	}
	return names
}

// Entries returns the populated slice, ready to be sent as a provider's
// "tools" request member.
func (c *Catalog) Entries() any {
	switch c.Format {
	case format.OpenAI:
		return c.OpenAI
	case format.Anthropic:
		return c.Anthropic
	}
	return c.Tools
}

// MarshalJSON renders the catalog as the service does: {"tools": [...]}.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tools any `json:"tools"`
	}{Tools: c.Entries()})
}

// ListTools fetches the catalog. Filtering happens on the server. For the
// provider formats, entries the server already shaped are validated and
// native entries are translated locally.
func (c *Client) ListTools(ctx context.Context, opts ...CallOption) (*Catalog, error) {
	o := newCallOptions(opts)
	if !o.format.Valid() {
		return nil, &FormatError{Format: o.format, Reason: "unknown format"}
	}
	tags, err := tag.Normalize(o.tags)
	if err != nil {
		return nil, fmt.Errorf("tags filter: %w", err)
	}
	query := httptransport.Query{
		"format":  o.format.QueryValue(),
		"tags":    tags,
		"toolkit": o.toolkit,
	}
	body, err := c.session.Send(ctx, http.MethodGet, "/tools", query, nil)
	if err != nil {
		return nil, err
	}
	cat, err := decodeCatalog(o.format, body)
	if err != nil {
		return nil, err
	}
	c.logger("listed %d tools (format %s)", cat.Len(), o.format)
	return cat, nil
}

func decodeCatalog(f format.Format, body json.RawMessage) (*Catalog, error) {
	raws, err := helpers.SplitToolsResponse(body)
	if err != nil {
		return nil, err
	}
	cat := &Catalog{Format: f}
	switch f {
	case format.OpenAI:
		cat.OpenAI = make([]format.OpenAITool, 0, len(raws))
	case format.Anthropic:
		cat.Anthropic = make([]format.AnthropicTool, 0, len(raws))
	default:
		cat.Tools = make([]tools.Tool, 0, len(raws))
	}
	for i, raw := range raws {
		shape, err := helpers.DetectShape(raw)
		if err != nil {
			return nil, &FormatError{Format: f, Reason: fmt.Sprintf("catalog entry %d: %v", i, err)}
		}
		if err := cat.add(shape, raw); err != nil {
			return nil, err
		}
	}
	if err := tools.CheckUnique(cat.Names()); err != nil {
		return nil, &FormatError{Format: f, Reason: err.Error()}
	}
	return cat, nil
}

func (c *Catalog) add(shape helpers.Shape, raw json.RawMessage) error {
	if shape == helpers.ShapeNative {
		var t tools.Tool
		if err := json.Unmarshal(raw, &t); err != nil {
			return &FormatError{Format: c.Format, Reason: err.Error()}
		}
		shaped, err := format.Translate(c.Format, t)
		if err != nil {
			return err
		}
		switch v := shaped.(type) {
		case tools.Tool:
			c.Tools = append(c.Tools, v)
		case format.OpenAITool:
			c.OpenAI = append(c.OpenAI, v)
		case format.AnthropicTool:
			c.Anthropic = append(c.Anthropic, v)
		}
		return nil
	}

	switch {
	case c.Format == format.OpenAI && shape == helpers.ShapeOpenAI:
		t, err := format.DecodeOpenAI(raw)
		if err != nil {
			return err
		}
		c.OpenAI = append(c.OpenAI, t)
	case c.Format == format.Anthropic && shape == helpers.ShapeAnthropic:
		t, err := format.DecodeAnthropic(raw)
		if err != nil {
			return err
		}
		c.Anthropic = append(c.Anthropic, t)
	default:
		return &FormatError{Format: c.Format, Reason: fmt.Sprintf("%s shaped entry in a %s catalog", shape, c.Format)}
	}
	return nil
}
