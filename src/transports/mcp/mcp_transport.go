// Package mcp exposes the catalog as a Model Context Protocol server. Every
// catalog tool becomes an MCP tool whose calls are relayed to the execute
// endpoint.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mcpapi "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	mixtools "github.com/mix-tools/mix-tools-go"
	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/tools"
)

// Catalog is the part of the client the bridge needs.
type Catalog interface {
	ListTools(ctx context.Context, opts ...mixtools.CallOption) (*mixtools.Catalog, error)
	ExecuteTool(ctx context.Context, toolName string, args map[string]any, opts ...mixtools.CallOption) (*mixtools.ExecuteResult, error)
}

// Bridge relays MCP tool calls to a catalog client.
type Bridge struct {
	client   Catalog
	name     string
	version  string
	listOpts []mixtools.CallOption
	logger   func(format string, args ...interface{})
}

type Option func(*Bridge)

// WithServerInfo sets the name and version announced to MCP clients.
func WithServerInfo(name, version string) Option {
	return func(b *Bridge) {
		b.name = name
		b.version = version
	}
}

// WithListOptions filters the catalog that is exposed, e.g. by toolkit.
func WithListOptions(opts ...mixtools.CallOption) Option {
	return func(b *Bridge) { b.listOpts = append(b.listOpts, opts...) }
}

func WithLogger(logger func(format string, args ...interface{})) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBridge(client Catalog, opts ...Option) *Bridge {
	b := &Bridge{
		client:  client,
		name:    "mix-tools",
		version: "1.0.0",
		logger:  func(format string, args ...interface{}) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// integer narrows a number property to JSON Schema "integer".
func integer() mcpapi.PropertyOption {
	return func(schema map[string]any) {
		schema["type"] = "integer"
	}
}

// ToolOptions maps the properties of t to MCP tool options. Types go through
// the same mapping used for provider schemas.
func ToolOptions(t tools.Tool) ([]mcpapi.ToolOption, error) {
	schema, err := format.BuildSchema(t)
	if err != nil {
		return nil, err
	}
	return toolOptions(t, schema)
}

func toolOptions(t tools.Tool, schema format.Schema) ([]mcpapi.ToolOption, error) {
	opts := []mcpapi.ToolOption{mcpapi.WithDescription(t.Description)}
	for _, p := range t.Properties {
		ps := schema.Properties[p.Name]
		popts := []mcpapi.PropertyOption{mcpapi.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcpapi.Required())
		}
		switch ps.Type {
		case "string":
			opts = append(opts, mcpapi.WithString(p.Name, popts...))
		case "integer":
			opts = append(opts, mcpapi.WithNumber(p.Name, append(popts, integer())...))
		case "number":
			opts = append(opts, mcpapi.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcpapi.WithBoolean(p.Name, popts...))
		case "array":
			opts = append(opts, mcpapi.WithArray(p.Name, popts...))
		case "object":
			opts = append(opts, mcpapi.WithObject(p.Name, popts...))
		default:
			return nil, &format.FormatError{Tool: t.Name, Property: p.Name, Type: ps.Type, Reason: "no MCP property kind"}
		}
	}
	return opts, nil
}

// ServerTools builds one MCP tool per catalog entry.
func (b *Bridge) ServerTools(catalog []tools.Tool) ([]mcpserver.ServerTool, error) {
	out := make([]mcpserver.ServerTool, 0, len(catalog))
	for _, t := range catalog {
		schema, err := format.BuildSchema(t)
		if err != nil {
			return nil, err
		}
		opts, err := toolOptions(t, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, mcpserver.ServerTool{
			Tool:    mcpapi.NewTool(t.Name, opts...),
			Handler: b.handler(t.Name, schema),
		})
	}
	return out, nil
}

// handler relays one call in the native format. Arguments that do not match
// the tool schema are rejected locally. Execution failures are reported to the
// MCP client as tool errors, not protocol errors.
func (b *Bridge) handler(name string, schema format.Schema) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpapi.CallToolRequest) (*mcpapi.CallToolResult, error) {
		args := req.GetArguments()
		if err := format.ValidateArguments(name, schema, args); err != nil {
			return mcpapi.NewToolResultError(err.Error()), nil
		}
		res, err := b.client.ExecuteTool(ctx, name, args)
		if err != nil {
			b.logger("mcp call %s failed: %v", name, err)
			return mcpapi.NewToolResultError(err.Error()), nil
		}
		text, err := format.Render(res.Result)
		if err != nil {
			return mcpapi.NewToolResultError(fmt.Sprintf("render result: %v", err)), nil
		}
		return mcpapi.NewToolResultText(text), nil
	}
}

// Server lists the native catalog and returns an MCP server exposing it.
func (b *Bridge) Server(ctx context.Context) (*mcpserver.MCPServer, error) {
	opts := append([]mixtools.CallOption{mixtools.WithFormat(mixtools.FormatNative)}, b.listOpts...)
	cat, err := b.client.ListTools(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	serverTools, err := b.ServerTools(cat.Tools)
	if err != nil {
		return nil, err
	}
	srv := mcpserver.NewMCPServer(b.name, b.version, mcpserver.WithToolCapabilities(false))
	srv.AddTools(serverTools...)
	b.logger("mcp bridge exposing %d tools", len(serverTools))
	return srv, nil
}

// EndpointPath is where Handler mounts the streamable HTTP transport.
const EndpointPath = "/mcp"

// Handler lists the catalog and returns an http.Handler serving it over
// streamable HTTP at EndpointPath.
func (b *Bridge) Handler(ctx context.Context) (http.Handler, error) {
	srv, err := b.Server(ctx)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(EndpointPath, mcpserver.NewStreamableHTTPServer(srv))
	return mux, nil
}

// ListenAndServe serves Handler on addr until ctx ends.
func (b *Bridge) ListenAndServe(ctx context.Context, addr string) error {
	h, err := b.Handler(ctx)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Addr: addr, Handler: h}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	b.logger("mcp bridge listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return httpSrv.Shutdown(context.Background())
	}
}

// ServeStdio serves the bridge over stdin and stdout.
func (b *Bridge) ServeStdio(ctx context.Context) error {
	srv, err := b.Server(ctx)
	if err != nil {
		return err
	}
	return mcpserver.ServeStdio(srv)
}
