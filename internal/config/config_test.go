package config

// Notes:
// - SearchPaths with a user config directory: the home-directory lookup is
//   not exercised because it depends on the environment of the test runner.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - Neutral defaults
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.BibDir != "bib" {
		t.Errorf("BibDir = %q, want %q", cfg.BibDir, "bib")
	}
	if cfg.Defaults != "header.yaml" {
		t.Errorf("Defaults = %q, want %q", cfg.Defaults, "header.yaml")
	}
	if cfg.Tools.Pandoc != "pandoc" || cfg.Tools.Git != "git" ||
		cfg.Tools.LatexDiff != "latexdiff" || cfg.Tools.Latex != "xelatex" {
		t.Errorf("Tools = %+v, want pandoc/git/latexdiff/xelatex", cfg.Tools)
	}
	if got := cfg.Watch.DebounceDuration(); got != DefaultDebounce {
		t.Errorf("DebounceDuration() = %v, want %v", got, DefaultDebounce)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateFieldLength - Length limits
// ---------------------------------------------------------------------------

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{"empty value", "", 10, false},
		{"at limit", "1234567890", 10, false},
		{"over limit", "12345678901", 10, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("tools.pandoc", tt.value, tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Value checks
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		wantMsg string
	}{
		{
			name:   "empty defaults allowed",
			mutate: func(c *Config) { c.Defaults = "" },
		},
		{
			name:    "empty bibDir",
			mutate:  func(c *Config) { c.BibDir = "  " },
			wantErr: ErrInvalidValue,
			wantMsg: "bibDir",
		},
		{
			name:    "empty pandoc",
			mutate:  func(c *Config) { c.Tools.Pandoc = "" },
			wantErr: ErrInvalidValue,
			wantMsg: "tools.pandoc",
		},
		{
			name:    "empty latex",
			mutate:  func(c *Config) { c.Tools.Latex = "" },
			wantErr: ErrInvalidValue,
			wantMsg: "tools.latex",
		},
		{
			name:    "tool name too long",
			mutate:  func(c *Config) { c.Tools.Git = strings.Repeat("g", MaxToolNameLength+1) },
			wantErr: ErrFieldTooLong,
			wantMsg: "tools.git",
		},
		{
			name:    "defaults path too long",
			mutate:  func(c *Config) { c.Defaults = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:   "valid debounce",
			mutate: func(c *Config) { c.Watch.Debounce = "1s" },
		},
		{
			name:    "unparseable debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = "soon" },
			wantErr: ErrInvalidValue,
			wantMsg: "watch.debounce",
		},
		{
			name:    "debounce too long",
			mutate:  func(c *Config) { c.Watch.Debounce = "1m" },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = "-1s" },
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWatchConfig_DebounceDuration - Parsing and fallback
// ---------------------------------------------------------------------------

func TestWatchConfig_DebounceDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", DefaultDebounce},
		{"750ms", 750 * time.Millisecond},
		{"0s", 0},
		{"garbage", DefaultDebounce},
	}

	for _, tt := range tests {
		if got := (WatchConfig{Debounce: tt.in}).DebounceDuration(); got != tt.want {
			t.Errorf("DebounceDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading and lookup
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "papermate.yaml", "tools:\n  latex: lualatex\n")

		cfg, err := LoadConfig(dir, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Tools.Latex != "lualatex" {
			t.Errorf("Tools.Latex = %q, want %q", cfg.Tools.Latex, "lualatex")
		}
		if cfg.Tools.Pandoc != DefaultPandoc {
			t.Errorf("Tools.Pandoc = %q, want default %q", cfg.Tools.Pandoc, DefaultPandoc)
		}
		if cfg.BibDir != DefaultBibDir {
			t.Errorf("BibDir = %q, want default %q", cfg.BibDir, DefaultBibDir)
		}
	})

	t.Run("explicit empty defaults disables the flag", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "papermate.yaml", "defaults: \"\"\nbibDir: refs\n")

		cfg, err := LoadConfig(dir, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults != "" {
			t.Errorf("Defaults = %q, want empty", cfg.Defaults)
		}
		if cfg.BibDir != "refs" {
			t.Errorf("BibDir = %q, want %q", cfg.BibDir, "refs")
		}
	})

	t.Run("relative path resolved against workdir", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "conf"), 0o750); err != nil {
			t.Fatal(err)
		}
		writeConfig(t, filepath.Join(dir, "conf"), "paper.yaml", "bibDir: references\n")

		cfg, err := LoadConfig(dir, "conf/paper.yaml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BibDir != "references" {
			t.Errorf("BibDir = %q, want %q", cfg.BibDir, "references")
		}
	})

	t.Run("name looked up in workdir with .yml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeConfig(t, dir, "thesis.yml", "bibDir: thesis-bib\n")

		cfg, err := LoadConfig(dir, "thesis")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BibDir != "thesis-bib" {
			t.Errorf("BibDir = %q, want %q", cfg.BibDir, "thesis-bib")
		}
	})

	t.Run("name not found", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(t.TempDir(), "papermate-test-missing-config")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "tried") {
			t.Errorf("error %q should list tried paths", err)
		}
	})

	t.Run("path not found", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := LoadConfig(dir, filepath.Join(dir, "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "papermate.yaml", "bibdirectory: refs\n")

		_, err := LoadConfig(dir, path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("empty file rejected", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "papermate.yaml", "")

		_, err := LoadConfig(dir, path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeConfig(t, dir, "papermate.yaml", "watch:\n  debounce: forever\n")

		_, err := LoadConfig(dir, path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(t.TempDir(), "")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestSearchPaths - Lookup order
// ---------------------------------------------------------------------------

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("/work", "thesis")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least 2 entries", paths)
	}
	if paths[0] != filepath.Join("/work", "thesis.yaml") {
		t.Errorf("paths[0] = %q, want workdir .yaml first", paths[0])
	}
	if paths[1] != filepath.Join("/work", "thesis.yml") {
		t.Errorf("paths[1] = %q, want workdir .yml second", paths[1])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, filepath.Join("papermate", "thesis")) {
			t.Errorf("user path %q not under papermate config dir", p)
		}
	}
}
