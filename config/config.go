// Package config reads and writes the per-profile config.toml.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultPageSize is the message page size used by pagination and passed
// as the transport's limit argument. Both sides must agree for the
// has-more inference to hold.
const DefaultPageSize = 50

// DefaultConversationLimit bounds the initial conversation fetch.
const DefaultConversationLimit = 100

// Config represents a profile's config.toml.
type Config struct {
	DefaultProfile string `toml:"default_profile"`

	Endpoint string `toml:"endpoint"`
	Password string `toml:"password"`

	PageSize          int  `toml:"page_size"`
	ConversationLimit int  `toml:"conversation_limit"`
	Notifications     bool `toml:"notifications"`
}

// Load reads config from the given path and fills in defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to the given path with 0600 permissions, creating
// parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{Notifications: true}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.ConversationLimit <= 0 {
		c.ConversationLimit = DefaultConversationLimit
	}
}
