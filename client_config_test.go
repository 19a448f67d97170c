package mixtools

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestVariableNotFound_Error(t *testing.T) {
	err := (&VariableNotFound{VariableName: "FOO"}).Error()
	if !strings.Contains(err, "FOO") {
		t.Errorf("error message should contain variable name; got %s", err)
	}
}

func TestDotEnv_LoadAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	fpath := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(fpath, []byte("FOO=bar\n"), 0o644))

	d := NewDotEnv(fpath)
	vars, err := d.Load()
	require.NoError(t, err)
	assert.Equal(t, "bar", vars["FOO"])

	val, err := d.Get("FOO")
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	_, err = d.Get("MISSING")
	var nf *VariableNotFound
	assert.True(t, errors.As(err, &nf))
}

func TestYAMLVariables_LoadAndGet(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "mixtools.yaml")
	require.NoError(t, os.WriteFile(fpath, []byte("MIXTOOLS_API_KEY: yaml-key\nMIXTOOLS_PORT: 8000\n"), 0o644))

	y := NewYAMLVariables(fpath)
	vars, err := y.Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", vars["MIXTOOLS_PORT"])

	val, err := y.Get(APIKeyVariable)
	require.NoError(t, err)
	assert.Equal(t, "yaml-key", val)
}

func TestYAMLVariables_Invalid(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(fpath, []byte("- just\n- a list\n"), 0o644))
	_, err := NewYAMLVariables(fpath).Load()
	assert.Error(t, err)
}

func TestEnvVariables(t *testing.T) {
	env := EnvVariables{Lookup: func(k string) (string, bool) {
		if k == APIKeyVariable {
			return "env-key", true
		}
		return "", false
	}}
	vars, err := env.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{APIKeyVariable: "env-key"}, vars)

	_, err = env.Get(BaseURLVariable)
	assert.Error(t, err)
}

func TestNewClientConfig_Defaults(t *testing.T) {
	cfg := NewClientConfig()
	assert.Empty(t, cfg.BaseURL)
	assert.Empty(t, cfg.APIKey)
	assert.Empty(t, cfg.LoadVariablesFrom)
	assert.NotNil(t, cfg.Environment)
}

func TestResolve_Precedence(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MIXTOOLS_API_KEY=file-key\nMIXTOOLS_BASE_URL=http://file:9000\n"), 0o644))
	env := EnvVariables{Lookup: func(k string) (string, bool) {
		if k == APIKeyVariable {
			return "env-key", true
		}
		return "", false
	}}

	cfg := &ClientConfig{APIKey: "explicit", Environment: env, LoadVariablesFrom: []VariablesConfig{NewDotEnv(dotenv)}}
	rc, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, "explicit", rc.apiKey)
	assert.Equal(t, "http://file:9000", rc.baseURL)

	cfg.APIKey = ""
	rc, err = cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, "env-key", rc.apiKey)

	cfg.Environment = EnvVariables{Lookup: noEnv}
	rc, err = cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, "file-key", rc.apiKey)
}

func TestResolve_DefaultBaseURL(t *testing.T) {
	cfg := &ClientConfig{APIKey: "k", Environment: EnvVariables{Lookup: noEnv}}
	rc, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, rc.baseURL)
}

func TestResolve_MissingCredential(t *testing.T) {
	cfg := &ClientConfig{Environment: EnvVariables{Lookup: noEnv}}
	_, err := cfg.resolve()
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestResolve_UnreadableSource(t *testing.T) {
	cfg := &ClientConfig{
		Environment:       EnvVariables{Lookup: noEnv},
		LoadVariablesFrom: []VariablesConfig{NewDotEnv(filepath.Join(t.TempDir(), "missing.env"))},
	}
	_, err := cfg.resolve()
	var ce *ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestResolve_BlankEnvFallsThrough(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("MIXTOOLS_API_KEY=file-key\n"), 0o644))
	env := EnvVariables{Lookup: func(k string) (string, bool) {
		if k == APIKeyVariable {
			return "   ", true
		}
		return "", false
	}}

	_, err := env.Get(APIKeyVariable)
	var nf *VariableNotFound
	assert.True(t, errors.As(err, &nf))

	cfg := &ClientConfig{Environment: env, LoadVariablesFrom: []VariablesConfig{NewDotEnv(dotenv)}}
	rc, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, "file-key", rc.apiKey)
}

// blankSource returns a whitespace value without reporting it missing.
type blankSource struct{}

func (blankSource) Load() (map[string]string, error) {
	return map[string]string{APIKeyVariable: " "}, nil
}
func (blankSource) Get(string) (string, error) { return " ", nil }

func TestResolve_BlankSourceValueSkipped(t *testing.T) {
	cfg := &ClientConfig{
		APIKey:            "",
		Environment:       EnvVariables{Lookup: noEnv},
		LoadVariablesFrom: []VariablesConfig{blankSource{}, EnvVariables{Lookup: func(string) (string, bool) { return "later-key", true }}},
	}
	rc, err := cfg.resolve()
	require.NoError(t, err)
	assert.Equal(t, "later-key", rc.apiKey)
}
