// Package types defines the configuration shared by the viewer commands.
package types

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	LogPath string `yaml:"log" json:"log"`
	Title   string `yaml:"title" json:"title"`

	// Live reload options
	Watch        bool          `yaml:"watch" json:"watch"`
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// Server log verbosity: none, basic, requests or debug
	LogLevel string `yaml:"log_level" json:"log_level"`
	NoColor  bool   `yaml:"no_color" json:"no_color"`

	// TrackedTool is the function name collected on the uploads page.
	TrackedTool string `yaml:"tracked_tool" json:"tracked_tool"`
	// Collapsible lists "kind" or "kind/subkind" keys hidden by the meta
	// toggle. Empty means the built-in table.
	Collapsible []string `yaml:"collapsible" json:"collapsible,omitempty"`
	// PreviewLength caps card summaries, in runes.
	PreviewLength int `yaml:"preview_length" json:"preview_length"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          8000,
		Title:         "Codex log",
		Watch:         true,
		PollInterval:  1500 * time.Millisecond,
		LogLevel:      "basic",
		TrackedTool:   "mcp__kernelmcp__vm_compile_c_and_upload",
		PreviewLength: 80,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.LogPath = ExpandPath(cfg.LogPath)
	return cfg, nil
}

// Validate checks the fields needed to serve a log.
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return errors.New("no log file given")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %s", c.PollInterval)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
