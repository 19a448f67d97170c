package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mixtools "github.com/mix-tools/mix-tools-go"
)

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-key" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"bad key"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/health":
			io.WriteString(w, `{"status":"healthy"}`)
		case "/tools":
			io.WriteString(w, `{"tools":[{"name":"text_transform","description":"Transform text","toolkit":"`+
				r.URL.Query().Get("toolkit")+`","properties":[{"name":"text","description":"Input","type":"str","required":true}]}]}`)
		case "/tools/text_transform/execute":
			io.WriteString(w, `{"result":{"output":"HELLO WORLD"}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"detail":"Tool not found"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_Health(t *testing.T) {
	srv := newService(t)
	out, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy"}`, out)
}

func TestRun_HealthUnauthorized(t *testing.T) {
	srv := newService(t)
	_, err := runCLI(t, "-base-url", srv.URL, "-api-key", "wrong", "health")
	var re *mixtools.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
}

func TestRun_ListOpenAI(t *testing.T) {
	srv := newService(t)
	out, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "list", "-format", "openai", "-toolkit", "text")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tools":[{"type":"function","function":{"name":"text_transform","description":"Transform text",
		"parameters":{"type":"object","properties":{"text":{"type":"string","description":"Input"}},"required":["text"]}}}]}`, out)
}

func TestRun_Exec(t *testing.T) {
	srv := newService(t)
	out, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key",
		"exec", "-format", "openai", "-id", "abc", "text_transform", `{"text":"hello world","operation":"upper"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"tool","tool_call_id":"abc","content":"{\"output\":\"HELLO WORLD\"}"}`, out)
}

func TestRun_ExecMissingID(t *testing.T) {
	srv := newService(t)
	_, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "exec", "-format", "anthropic", "text_transform")
	assert.ErrorIs(t, err, mixtools.ErrMissingCorrelationID)
}

func TestRun_Batch(t *testing.T) {
	srv := newService(t)
	file := filepath.Join(t.TempDir(), "calls.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"id":"c1","name":"text_transform","arguments":{"text":"a"}},
		{"id":"c2","name":"missing","arguments":{}}
	]`), 0o644))

	out, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "batch", "-format", "openai", file)
	var re *mixtools.RemoteError
	require.True(t, errors.As(err, &re))
	assert.JSONEq(t, `[{"role":"tool","tool_call_id":"c1","content":"{\"output\":\"HELLO WORLD\"}"}]`, out)
}

func TestRun_EnvFileCredential(t *testing.T) {
	srv := newService(t)
	t.Setenv(mixtools.APIKeyVariable, "")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MIXTOOLS_API_KEY=cli-key\n"), 0o644))

	out, err := runCLI(t, "-base-url", srv.URL, "-env-file", envFile, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
}

func TestRun_NoCredential(t *testing.T) {
	t.Setenv(mixtools.APIKeyVariable, "")
	_, err := runCLI(t, "-base-url", "http://127.0.0.1:1", "health")
	var ce *mixtools.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestRun_Usage(t *testing.T) {
	_, err := runCLI(t)
	assert.ErrorIs(t, err, errUsage)

	srv := newService(t)
	_, err = runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "frobnicate")
	assert.ErrorIs(t, err, errUsage)
}

func TestLoadSettings_FilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixtools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://file:8000
api_key: file-key
format: anthropic
tags: [search, academic]
mcp:
  addr: ":9999"
`), 0o644))
	t.Setenv("MIXTOOLS_API_KEY", "env-key")

	s, err := loadSettings(path, map[string]any{"base_url": "http://flag:1"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1", s.BaseURL)
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "anthropic", s.Format)
	assert.Equal(t, []string{"search", "academic"}, s.Tags)
	assert.Equal(t, ":9999", s.MCPAddr)
	assert.Equal(t, 4, s.MaxConcurrency)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := loadSettings(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestRun_ListTagsFlag(t *testing.T) {
	var gotTags string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTags = r.URL.Query().Get("tags")
		io.WriteString(w, `{"tools":[]}`)
	}))
	defer srv.Close()

	out, err := runCLI(t, "-base-url", srv.URL, "-api-key", "cli-key", "list", "-tags", " search, academic ,")
	require.NoError(t, err)
	assert.Equal(t, "search,academic", gotTags)
	assert.JSONEq(t, `{"tools":[]}`, out)
}
