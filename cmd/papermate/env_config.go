package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alnah/go-papermate/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // PAPERMATE_CONFIG: config file name or path
	BibDir     string // PAPERMATE_BIB_DIR: directory scanned for .csl and .bib
	Defaults   string // PAPERMATE_DEFAULTS: pandoc defaults file

	// Tool binaries
	Pandoc    string // PAPERMATE_PANDOC
	Git       string // PAPERMATE_GIT
	LatexDiff string // PAPERMATE_LATEXDIFF
	Latex     string // PAPERMATE_LATEX
}

// knownEnvVars lists valid PAPERMATE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PAPERMATE_CONFIG":    true,
	"PAPERMATE_BIB_DIR":   true,
	"PAPERMATE_DEFAULTS":  true,
	"PAPERMATE_PANDOC":    true,
	"PAPERMATE_GIT":       true,
	"PAPERMATE_LATEXDIFF": true,
	"PAPERMATE_LATEX":     true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("PAPERMATE_CONFIG"),
		BibDir:     os.Getenv("PAPERMATE_BIB_DIR"),
		Defaults:   os.Getenv("PAPERMATE_DEFAULTS"),
		Pandoc:     os.Getenv("PAPERMATE_PANDOC"),
		Git:        os.Getenv("PAPERMATE_GIT"),
		LatexDiff:  os.Getenv("PAPERMATE_LATEXDIFF"),
		Latex:      os.Getenv("PAPERMATE_LATEX"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized PAPERMATE_* variables.
// Helps catch typos like PAPERMATE_BIBDIR instead of PAPERMATE_BIB_DIR.
func warnUnknownEnvVars(w io.Writer) {
	var unknown []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PAPERMATE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file, giving:
// CLI flags > env vars > config file > defaults
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.BibDir != "" {
		cfg.BibDir = env.BibDir
	}
	if env.Defaults != "" {
		cfg.Defaults = env.Defaults
	}
	if env.Pandoc != "" {
		cfg.Tools.Pandoc = env.Pandoc
	}
	if env.Git != "" {
		cfg.Tools.Git = env.Git
	}
	if env.LatexDiff != "" {
		cfg.Tools.LatexDiff = env.LatexDiff
	}
	if env.Latex != "" {
		cfg.Tools.Latex = env.Latex
	}
}
