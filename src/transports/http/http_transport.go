package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/mix-tools/mix-tools-go/src/json"
)

// RequestIDHeader carries a fresh id on every request for server side tracing.
const RequestIDHeader = "X-Request-ID"

// Query holds URL parameters for Send. Nil values and empty strings are
// omitted, slices are joined with commas and other scalars are rendered with
// cast.
type Query map[string]any

// Session owns one pooled HTTP client bound to a base URL and a credential.
// It must be opened before use and closed afterwards; Send is safe for
// concurrent use while the session is open.
type Session struct {
	baseURL    *url.URL
	credential string
	userAgent  string
	custom     *http.Client
	logger     func(format string, args ...interface{})

	mu     sync.RWMutex
	client *http.Client
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient makes the session use client instead of a private pool.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.custom = client
	}
}

// WithLogger sets a printf style logger for request tracing.
func WithLogger(logger func(format string, args ...interface{})) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		if strings.TrimSpace(ua) != "" {
			s.userAgent = ua
		}
	}
}

// NewSession validates its arguments and returns a closed session. It
// performs no network activity.
func NewSession(baseURL, credential string, opts ...Option) (*Session, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("credential must be provided")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: must be an absolute http(s) URL", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	s := &Session{
		baseURL:    u,
		credential: credential,
		userAgent:  "mix-tools-go",
		logger:     func(format string, args ...interface{}) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the normalised base URL.
func (s *Session) BaseURL() string {
	return s.baseURL.String()
}

// Open acquires the connection pool. Opening an open session is an
// IllegalStateError.
func (s *Session) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return &IllegalStateError{Op: "open", Err: ErrSessionOpen}
	}
	if s.custom != nil {
		s.client = s.custom
	} else {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		s.client = &http.Client{Transport: tr}
	}
	s.logger("session opened for %s", s.baseURL)
	return nil
}

// Close releases idle pooled connections. It is safe to call more than once.
// Requests already in flight finish under their own contexts.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	s.client.CloseIdleConnections()
	s.client = nil
	s.logger("session closed for %s", s.baseURL)
	return nil
}

// Do opens the session, runs fn and closes the session on every exit path.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close()
	return fn()
}

// Send issues one request and returns the JSON body. path must already be
// escaped. A non-2xx status is returned as *RemoteError. There is no retry.
func (s *Session) Send(ctx context.Context, method, path string, query Query, body any) (json.RawMessage, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return nil, &IllegalStateError{Op: method + " " + path, Err: ErrSessionClosed}
	}

	target, err := s.resolve(path, query)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	s.applyAuth(req)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		s.logger("%s %s [%s] failed: %v", method, path, reqID, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	s.logger("%s %s [%s] -> %d in %s", method, path, reqID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRemoteError(method, path, resp.StatusCode, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrInvalidJSON)
	}
	return json.RawMessage(data), nil
}

// applyAuth attaches the credential as a bearer token.
func (s *Session) applyAuth(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.credential)
}

func (s *Session) resolve(path string, query Query) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(s.baseURL.String() + path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", path, err)
	}
	values, err := EncodeQuery(query)
	if err != nil {
		return "", err
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// EncodeQuery renders q as URL values following the Query rules.
func EncodeQuery(q Query) (url.Values, error) {
	values := url.Values{}
	for k, v := range q {
		var (
			s   string
			err error
		)
		switch t := v.(type) {
		case nil:
			continue
		case string:
			s = t
		case []string:
			s = strings.Join(t, ",")
		case []any:
			var parts []string
			if parts, err = cast.ToStringSliceE(t); err == nil {
				s = strings.Join(parts, ",")
			}
		case fmt.Stringer:
			s = t.String()
		default:
			s, err = cast.ToStringE(v)
		}
		if err != nil {
			return nil, fmt.Errorf("encode query parameter %q: %w", k, err)
		}
		if s == "" {
			continue
		}
		values.Set(k, s)
	}
	return values, nil
}
