package mixtools

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	// APIKeyVariable names the credential in every variable source.
	APIKeyVariable = "MIXTOOLS_API_KEY"
	// BaseURLVariable names the base URL override in every variable source.
	BaseURLVariable = "MIXTOOLS_BASE_URL"
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000"
)

// VariableNotFound is returned when a requested variable isn't present.
type VariableNotFound struct {
	VariableName string
}

func (e *VariableNotFound) Error() string {
	return fmt.Sprintf("variable %q not found", e.VariableName)
}

// VariablesConfig is the interface for any variable loading strategy.
type VariablesConfig interface {
	// Load returns all variables available from this source.
	Load() (map[string]string, error)
	// Get returns a single variable value or an error if not present.
	Get(key string) (string, error)
}

// EnvVariables reads the process environment. Lookup defaults to
// os.LookupEnv and can be replaced in tests.
type EnvVariables struct {
	Lookup func(key string) (string, bool)
}

func (e EnvVariables) lookup() func(string) (string, bool) {
	if e.Lookup != nil {
		return e.Lookup
	}
	return os.LookupEnv
}

// Load returns the mix tools variables present in the environment.
func (e EnvVariables) Load() (map[string]string, error) {
	vars := make(map[string]string)
	for _, key := range []string{APIKeyVariable, BaseURLVariable} {
		if v, ok := e.lookup()(key); ok {
			vars[key] = v
		}
	}
	return vars, nil
}

// Get looks up a single environment variable. Blank values count as unset.
func (e EnvVariables) Get(key string) (string, error) {
	if v, ok := e.lookup()(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", &VariableNotFound{VariableName: key}
}

// DotEnv implements VariablesConfig by loading a .env file.
type DotEnv struct {
	EnvFilePath string
}

func NewDotEnv(path string) *DotEnv {
	return &DotEnv{EnvFilePath: path}
}

// Load reads the .env file and returns a map of key→value.
func (d *DotEnv) Load() (map[string]string, error) {
	return godotenv.Read(d.EnvFilePath)
}

// Get loads the file and looks up a single key.
func (d *DotEnv) Get(key string) (string, error) {
	return getFrom(d, key)
}

// YAMLVariables loads a flat YAML mapping. Non-string scalars are converted
// with cast, so `MIXTOOLS_BASE_URL: http://host:8000` and numeric values both
// load.
type YAMLVariables struct {
	FilePath string
}

func NewYAMLVariables(path string) *YAMLVariables {
	return &YAMLVariables{FilePath: path}
}

// Load parses the YAML file.
func (y *YAMLVariables) Load() (map[string]string, error) {
	data, err := os.ReadFile(y.FilePath)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in %q: %w", y.FilePath, err)
	}
	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q in %q: %w", k, y.FilePath, err)
		}
		vars[k] = s
	}
	return vars, nil
}

// Get loads the file and looks up a single key.
func (y *YAMLVariables) Get(key string) (string, error) {
	return getFrom(y, key)
}

func getFrom(src VariablesConfig, key string) (string, error) {
	vars, err := src.Load()
	if err != nil {
		return "", err
	}
	if val, ok := vars[key]; ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val), nil
	}
	return "", &VariableNotFound{VariableName: key}
}

// ClientConfig holds the explicit settings and the variable sources consulted
// when a setting is left empty.
type ClientConfig struct {
	// BaseURL of the catalog service. Empty means: look it up, then fall back
	// to DefaultBaseURL.
	BaseURL string

	// APIKey explicitly passed in (takes precedence).
	APIKey string

	// Environment is consulted right after the explicit values. Nil means the
	// process environment.
	Environment VariablesConfig

	// Additional sources (e.g. .env or YAML files), consulted in order after
	// the environment.
	LoadVariablesFrom []VariablesConfig

	// HTTPClient replaces the session's private connection pool.
	HTTPClient *http.Client

	// Logger receives printf style trace lines. Nil discards them.
	Logger func(format string, args ...interface{})

	UserAgent string
}

// NewClientConfig constructs a config with sensible defaults.
func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		Environment: EnvVariables{},
	}
}

type resolvedConfig struct {
	baseURL string
	apiKey  string
}

// resolve runs once at construction. Precedence for each setting: explicit
// value, environment, additional sources in order.
func (c *ClientConfig) resolve() (resolvedConfig, error) {
	env := c.Environment
	if env == nil {
		env = EnvVariables{}
	}
	sources := append([]VariablesConfig{env}, c.LoadVariablesFrom...)

	apiKey, err := lookup(strings.TrimSpace(c.APIKey), APIKeyVariable, sources)
	if err != nil {
		return resolvedConfig{}, err
	}
	if apiKey == "" {
		return resolvedConfig{}, &ConfigurationError{Setting: "api_key", Err: ErrMissingCredential}
	}

	baseURL, err := lookup(strings.TrimSpace(c.BaseURL), BaseURLVariable, sources)
	if err != nil {
		return resolvedConfig{}, err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return resolvedConfig{baseURL: baseURL, apiKey: apiKey}, nil
}

func lookup(explicit, key string, sources []VariablesConfig) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, src := range sources {
		v, err := src.Get(key)
		if err == nil {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			return v, nil
		}
		if _, missing := err.(*VariableNotFound); missing {
			continue
		}
		return "", &ConfigurationError{Setting: key, Err: err}
	}
	return "", nil
}
