// Package config handles TOML configuration loading with environment
// variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// Config is the root configuration structure.
type Config struct {
	TVDB  TVDBConfig  `toml:"tvdb"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

type TVDBConfig struct {
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
}

type CacheConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Substitute environment variables
	content := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	if cfg.TVDB.Language == "" {
		cfg.TVDB.Language = "en"
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = "./data/tvmeta.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TVDB.APIKey == "" {
		return errors.New("tvdb.api_key is required")
	}
	if _, err := language.Parse(c.TVDB.Language); err != nil {
		return fmt.Errorf("tvdb.language %q: %w", c.TVDB.Language, err)
	}
	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1] // Strip ${ and }
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match // Leave unchanged if not found
	})
}
