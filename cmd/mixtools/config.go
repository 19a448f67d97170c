package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// settings is the merged CLI configuration. Flags win over environment
// variables, which win over the config file.
type settings struct {
	BaseURL        string
	APIKey         string
	EnvFile        string
	Format         string
	Toolkit        string
	Tags           []string
	MaxConcurrency int
	MCPAddr        string
	Verbose        bool
}

func loadSettings(configPath string, overrides map[string]any) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix("MIXTOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("format", "native")
	v.SetDefault("max_concurrency", 4)
	v.SetDefault("mcp.addr", ":8090")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}
	for key, val := range overrides {
		v.Set(key, val)
	}

	return &settings{
		BaseURL:        v.GetString("base_url"),
		APIKey:         v.GetString("api_key"),
		EnvFile:        v.GetString("env_file"),
		Format:         v.GetString("format"),
		Toolkit:        v.GetString("toolkit"),
		Tags:           v.GetStringSlice("tags"),
		MaxConcurrency: v.GetInt("max_concurrency"),
		MCPAddr:        v.GetString("mcp.addr"),
		Verbose:        v.GetBool("verbose"),
	}, nil
}
