// Package mixtools is a client for a remote tool catalog. It lists tools,
// executes them remotely and shapes both the catalog and the results for the
// OpenAI function calling and Anthropic tool use protocols.
package mixtools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/json"
	httptransport "github.com/mix-tools/mix-tools-go/src/transports/http"
)

// Format re-exports the format selector.
type Format = format.Format

const (
	FormatNative    = format.Native
	FormatOpenAI    = format.OpenAI
	FormatAnthropic = format.Anthropic
)

// ClientInterface defines the public API.
type ClientInterface interface {
	HealthCheck(ctx context.Context) (*Health, error)
	ListTools(ctx context.Context, opts ...CallOption) (*Catalog, error)
	ExecuteTool(ctx context.Context, toolName string, args map[string]any, opts ...CallOption) (*ExecuteResult, error)
}

// Client talks to the catalog service over one Session. It holds no state of
// its own beyond the session, so its methods are safe for concurrent use.
type Client struct {
	session *httptransport.Session
	logger  func(format string, args ...interface{})
}

var _ ClientInterface = (*Client)(nil)

// New builds a client from an optional base URL and credential. Empty values
// fall back to the environment.
func New(baseURL, apiKey string) (*Client, error) {
	cfg := NewClientConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = apiKey
	return NewClient(cfg)
}

// NewClient resolves configuration once and returns a closed client. A
// missing credential is a *ConfigurationError; no request is made.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = NewClientConfig()
	}
	rc, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(format string, args ...interface{}) {}
	}
	opts := []httptransport.Option{
		httptransport.WithLogger(logger),
		httptransport.WithUserAgent(cfg.UserAgent),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, httptransport.WithHTTPClient(cfg.HTTPClient))
	}
	session, err := httptransport.NewSession(rc.baseURL, rc.apiKey, opts...)
	if err != nil {
		return nil, &ConfigurationError{Setting: "base_url", Err: err}
	}
	return &Client{session: session, logger: logger}, nil
}

// BaseURL returns the resolved service URL.
func (c *Client) BaseURL() string {
	return c.session.BaseURL()
}

// Open acquires the underlying connection pool.
func (c *Client) Open(ctx context.Context) error {
	return c.session.Open(ctx)
}

// Close releases the connection pool. It is safe to call more than once.
func (c *Client) Close() error {
	return c.session.Close()
}

// Do opens the client, runs fn and closes the client on every exit path.
func (c *Client) Do(ctx context.Context, fn func(*Client) error) error {
	return c.session.Do(ctx, func() error { return fn(c) })
}

// Health is the decoded health endpoint body.
type Health struct {
	Status string
	Raw    map[string]any
}

// HealthCheck calls GET /health.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	body, err := c.session.Send(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	status, _ := raw["status"].(string)
	return &Health{Status: status, Raw: raw}, nil
}

// CallOption tunes ListTools, ExecuteTool and ExecuteAll.
type CallOption func(*callOptions)

type callOptions struct {
	format         format.Format
	tags           any
	toolkit        string
	correlationID  string
	maxConcurrency int
}

func newCallOptions(opts []CallOption) callOptions {
	o := callOptions{maxConcurrency: 4}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFormat selects the catalog and result shape.
func WithFormat(f format.Format) CallOption {
	return func(o *callOptions) { o.format = f }
}

// WithTags filters the catalog by tags; several tags are sent comma joined.
func WithTags(tags ...string) CallOption {
	return func(o *callOptions) { o.tags = tags }
}

// WithToolkit filters the catalog by toolkit name.
func WithToolkit(name string) CallOption {
	return func(o *callOptions) { o.toolkit = name }
}

// WithCorrelationID sets the tool call id echoed in provider envelopes.
func WithCorrelationID(id string) CallOption {
	return func(o *callOptions) { o.correlationID = id }
}

// WithMaxConcurrency bounds the number of in-flight calls of ExecuteAll.
func WithMaxConcurrency(n int) CallOption {
	return func(o *callOptions) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}
