// Package config loads the .qne.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up next to a document.
const FileName = ".qne.yaml"

// Config represents a .qne.yaml configuration file.
type Config struct {
	Log      LogConfig      `yaml:"log,omitempty"`
	Journal  JournalConfig  `yaml:"journal,omitempty"`
	Paste    PasteConfig    `yaml:"paste,omitempty"`
	Validate ValidateConfig `yaml:"validate,omitempty"`

	// Scenes maps an external scene name, as written in externalScenes, to
	// the path of the document that defines it. Relative paths are resolved
	// against the directory holding the configuration file.
	Scenes map[string]string `yaml:"scenes,omitempty"`

	// dir is the directory the file was loaded from.
	dir string
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: warn
	Level string `yaml:"level,omitempty"`
}

// JournalConfig controls the undo journal.
type JournalConfig struct {
	// Enabled turns on journaling for mutating commands. Default: true
	Enabled *bool `yaml:"enabled,omitempty"`
	// Path is the journal file. Default: <document>.qne-journal next to the
	// document.
	Path string `yaml:"path,omitempty"`
	// Limit is the number of records kept. Default: 20
	Limit int `yaml:"limit,omitempty"`
}

// PasteConfig tunes the paste operation.
type PasteConfig struct {
	// MaxIDAttempts bounds id regeneration when a fresh id collides.
	// Default: 16
	MaxIDAttempts int `yaml:"maxIdAttempts,omitempty"`
}

// ValidateConfig tunes the validate command.
type ValidateConfig struct {
	// Workers is the number of documents audited concurrently. Default: 4
	Workers int `yaml:"workers,omitempty"`
}

// Template is the starter file written by `qne init`. Every key is
// commented out, so it parses to Default.
const Template = `# qne configuration
# log:
#   level: warn            # debug | info | warn | error
# journal:
#   enabled: true
#   path: ""               # default: <document>.qne-journal
#   limit: 20
# paste:
#   maxIdAttempts: 0       # 0 uses the engine default
# validate:
#   workers: 4
# scenes:                  # external scene -> document, for friendly names
#   "[assembly:/levels/intro.entity].pc_entitytype": intro.entity.json
`

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{}
}

// Parse decodes configuration from YAML bytes. dir anchors relative scene
// paths.
func Parse(data []byte, dir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	cfg.dir = dir
	return &cfg, nil
}

// Load reads the configuration file at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		cfg.dir = filepath.Dir(path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// LoadForDocument loads FileName from the directory holding docPath.
func LoadForDocument(docPath string) (*Config, error) {
	return Load(filepath.Join(filepath.Dir(docPath), FileName))
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.Log.Level)
	return lvl
}

// JournalEnabled reports whether mutating commands record undo snapshots.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Enabled == nil || *c.Journal.Enabled
}

// JournalPath returns the journal file for docPath.
func (c *Config) JournalPath(docPath string) string {
	if c.Journal.Path == "" {
		return docPath + ".qne-journal"
	}
	return c.resolve(c.Journal.Path)
}

// JournalLimit returns the configured number of kept records or the default.
func (c *Config) JournalLimit() int {
	if c.Journal.Limit <= 0 {
		return 20
	}
	return c.Journal.Limit
}

// MaxIDAttempts returns the paste retry bound, or 0 to use the engine default.
func (c *Config) MaxIDAttempts() int {
	if c.Paste.MaxIDAttempts < 0 {
		return 0
	}
	return c.Paste.MaxIDAttempts
}

// Workers returns the validate concurrency or the default value.
func (c *Config) Workers() int {
	if c.Validate.Workers <= 0 {
		return 4
	}
	return c.Validate.Workers
}

// ScenePaths returns Scenes with relative paths resolved.
func (c *Config) ScenePaths() map[string]string {
	out := make(map[string]string, len(c.Scenes))
	for scene, path := range c.Scenes {
		out[scene] = c.resolve(path)
	}
	return out
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("invalid log level %q", s)
}
