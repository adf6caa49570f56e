package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-papermate/internal/fileutil"
	"github.com/alnah/go-papermate/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxToolNameLength = 1024
	MaxDurationLength = 20 // "1m30s"
)

// Watch debounce bounds.
const (
	DefaultDebounce = 300 * time.Millisecond
	MaxDebounce     = 10 * time.Second
)

// Default values.
const (
	DefaultBibDir    = "bib"
	DefaultDefaults  = "header.yaml"
	DefaultPandoc    = "pandoc"
	DefaultGit       = "git"
	DefaultLatexDiff = "latexdiff"
	DefaultLatex     = "xelatex"
)

// Config holds all configuration for a papermate run.
type Config struct {
	BibDir   string      `yaml:"bibDir"`   // Directory scanned for .csl and .bib (relative to workdir)
	Defaults string      `yaml:"defaults"` // Pandoc defaults file ("" = none)
	Tools    ToolsConfig `yaml:"tools"`
	Watch    WatchConfig `yaml:"watch"`
}

// ToolsConfig names the binaries of the external collaborators.
// A bare name is looked up on PATH; a path is used as-is.
type ToolsConfig struct {
	Pandoc    string `yaml:"pandoc"`
	Git       string `yaml:"git"`
	LatexDiff string `yaml:"latexdiff"`
	Latex     string `yaml:"latex"`
}

// WatchConfig defines --watch options.
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // Go duration, e.g. "300ms"
}

// DebounceDuration returns the parsed debounce delay, falling back to
// DefaultDebounce when unset. Call Validate first to reject bad values.
func (w WatchConfig) DebounceDuration() time.Duration {
	if w.Debounce == "" {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// Validate checks field lengths and values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("bibDir", c.BibDir, MaxPathLength); err != nil {
		return err
	}
	if strings.TrimSpace(c.BibDir) == "" {
		return fmt.Errorf("%w: bibDir cannot be empty", ErrInvalidValue)
	}
	if err := validateFieldLength("defaults", c.Defaults, MaxPathLength); err != nil {
		return err
	}

	tools := []struct {
		field string
		value string
	}{
		{"tools.pandoc", c.Tools.Pandoc},
		{"tools.git", c.Tools.Git},
		{"tools.latexdiff", c.Tools.LatexDiff},
		{"tools.latex", c.Tools.Latex},
	}
	for _, tool := range tools {
		if err := validateFieldLength(tool.field, tool.value, MaxToolNameLength); err != nil {
			return err
		}
		if strings.TrimSpace(tool.value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, tool.field)
		}
	}

	if err := validateFieldLength("watch.debounce", c.Watch.Debounce, MaxDurationLength); err != nil {
		return err
	}
	if c.Watch.Debounce != "" {
		d, err := time.ParseDuration(c.Watch.Debounce)
		if err != nil {
			return fmt.Errorf("%w: watch.debounce: %v", ErrInvalidValue, err)
		}
		if d < 0 || d > MaxDebounce {
			return fmt.Errorf("%w: watch.debounce: must be between 0 and %s, got %s", ErrInvalidValue, MaxDebounce, d)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		BibDir:   DefaultBibDir,
		Defaults: DefaultDefaults,
		Tools: ToolsConfig{
			Pandoc:    DefaultPandoc,
			Git:       DefaultGit,
			LatexDiff: DefaultLatexDiff,
			Latex:     DefaultLatex,
		},
		Watch: WatchConfig{Debounce: ""},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path
// relative to workDir. Otherwise, it's treated as a config name and searched
// with SearchPaths. Keys absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(workDir, nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
		if !filepath.IsAbs(configPath) {
			configPath = filepath.Join(workDir, configPath)
		}
	} else {
		var err error
		configPath, err = resolveConfigPath(workDir, nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried, in order, when looking up a config by name:
// NAME.yaml and NAME.yml in workDir, then in the user config directory.
func SearchPaths(workDir, name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, filepath.Join(workDir, name+ext))
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "papermate", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing path from SearchPaths.
func resolveConfigPath(workDir, name string) (string, error) {
	tried := SearchPaths(workDir, name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
