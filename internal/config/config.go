// Package config loads the client configuration from a YAML file, falling
// back to defaults for anything unset.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full client configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Events  EventsConfig  `yaml:"events"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	Session SessionConfig `yaml:"session"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	// URL is the HTTP base of the backend, e.g. "http://127.0.0.1:8000".
	URL string `yaml:"url"`
}

// EventsConfig tunes the notification channel.
type EventsConfig struct {
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// LogConfig controls client-side logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig locates the local notification history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig locates the persisted login session.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := stateDir()
	return &Config{
		Server:  ServerConfig{URL: "http://127.0.0.1:8000"},
		Events:  EventsConfig{RetryDelay: 5 * time.Second},
		Log:     LogConfig{Level: "info"},
		History: HistoryConfig{Path: filepath.Join(dir, "history.db")},
		Session: SessionConfig{Path: filepath.Join(dir, "session.json")},
	}
}

// Load reads path over the defaults. A missing file is not an error; the
// defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(stateDir(), "config.yaml")
}

// WSBase derives the socket scheme base from the server URL
// (http -> ws, https -> wss).
func (c *Config) WSBase() string {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return "ws://127.0.0.1:8000"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String()
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "opswatch")
	}
	return ".opswatch"
}
