// Package config loads codescout configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = ".codescout.yaml"

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider  string `koanf:"provider" yaml:"provider"`     // openai, jina, hashed; "" = auto-detect
	APIKey    string `koanf:"api_key" yaml:"api_key"`       // Falls back to the provider's env var
	Dimension int    `koanf:"dimension" yaml:"dimension"`   // Hashed provider only
	BatchSize int    `koanf:"batch_size" yaml:"batch_size"` // Texts per provider call
	CacheSize int    `koanf:"cache_size" yaml:"cache_size"` // LRU embedding cache entries
}

// SearchConfig tunes query behavior.
type SearchConfig struct {
	DefaultK        int `koanf:"default_k" yaml:"default_k"`
	MaxContextChars int `koanf:"max_context_chars" yaml:"max_context_chars"`
}

// Config is the full configuration tree.
type Config struct {
	SnapshotDir string          `koanf:"snapshot_dir" yaml:"snapshot_dir"`
	IgnoreFile  string          `koanf:"ignore_file" yaml:"ignore_file"`
	Debug       bool            `koanf:"debug" yaml:"debug"`
	Embedding   EmbeddingConfig `koanf:"embedding" yaml:"embedding"`
	Search      SearchConfig    `koanf:"search" yaml:"search"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SnapshotDir: ".codescout/index",
		Embedding: EmbeddingConfig{
			BatchSize: 50,
			CacheSize: 10000,
		},
		Search: SearchConfig{
			DefaultK:        10,
			MaxContextChars: 4000,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// CODESCOUT_* environment variables (CODESCOUT_SNAPSHOT_DIR, nested keys
// via double underscore: CODESCOUT_EMBEDDING__PROVIDER).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("CODESCOUT_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "CODESCOUT_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
