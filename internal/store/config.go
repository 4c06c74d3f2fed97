package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPollInterval = time.Second
	DefaultWrapMargin   = 6
)

// Config holds user preferences shared by every document.
type Config struct {
	// Editor overrides $VISUAL/$EDITOR for external edits.
	Editor string `json:"editor,omitempty"`

	// Theme is one of: auto|light|dark.
	Theme string `json:"theme,omitempty"`

	// PollIntervalMS is how often the document's modification time is checked.
	PollIntervalMS int `json:"pollIntervalMs,omitempty"`

	// WrapMargin is subtracted from the terminal width to get the task wrap width.
	WrapMargin *int `json:"wrapMargin,omitempty"`
}

func (c *Config) PollInterval() time.Duration {
	if c == nil || c.PollIntervalMS <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) Margin() int {
	if c == nil || c.WrapMargin == nil || *c.WrapMargin < 0 {
		return DefaultWrapMargin
	}
	return *c.WrapMargin
}

// ConfigKeys lists the keys accepted by Set, in display order.
func ConfigKeys() []string {
	return []string{"editor", "theme", "pollIntervalMs", "wrapMargin"}
}

// Get returns the string form of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "editor":
		return c.Editor, nil
	case "theme":
		return c.Theme, nil
	case "pollIntervalMs":
		return strconv.Itoa(int(c.PollInterval() / time.Millisecond)), nil
	case "wrapMargin":
		return strconv.Itoa(c.Margin()), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set parses and assigns a config key from its string form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "editor":
		c.Editor = value
	case "theme":
		switch strings.ToLower(value) {
		case "", "auto", "light", "dark":
			c.Theme = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid theme %q (want auto|light|dark)", value)
		}
	case "pollIntervalMs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid pollIntervalMs %q", value)
		}
		c.PollIntervalMS = n
	case "wrapMargin":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid wrapMargin %q", value)
		}
		c.WrapMargin = &n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.lazytodo).
	if v := strings.TrimSpace(os.Getenv("LAZYTODO_HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lazytodo"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the config file. A missing file yields defaults.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, ioErr("read", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioErr("write", filepath.Dir(path), err)
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWriteFile(path, b, 0o600); err != nil {
		return ioErr("write", path, err)
	}
	return nil
}
