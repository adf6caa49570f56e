package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	papermate "github.com/alnah/go-papermate"
	"github.com/alnah/go-papermate/internal/config"
	"github.com/alnah/go-papermate/internal/yamlutil"
)

// probeTimeout bounds each "--version" and git probe.
const probeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Tools    []toolInfo  `json:"tools"`
	Project  projectInfo `json:"project"`
	Env      envInfo     `json:"environment"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// toolInfo holds the detection result of one external tool.
type toolInfo struct {
	Name     string `json:"name"`   // collaborator key
	Binary   string `json:"binary"` // configured binary
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Required bool   `json:"required"` // needed for current-version renders
}

// projectInfo holds working directory checks.
type projectInfo struct {
	WorkDir       string `json:"workdir"`
	Config        string `json:"config,omitempty"`
	GitRepository bool   `json:"git_repository"`
	Defaults      string `json:"defaults,omitempty"`
	DefaultsValid bool   `json:"defaults_valid"`
	Manuscript    string `json:"manuscript,omitempty"`
	CSL           string `json:"csl,omitempty"`
	Bibliography  string `json:"bibliography,omitempty"`
	Words         int    `json:"words,omitempty"`
	Citations     int    `json:"citations,omitempty"`
}

// envInfo holds platform information.
type envInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// runDoctorCmd executes --check and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, flags *cliFlags, env *Environment) int {
	result := runDoctor(ctx, flags, env)

	if flags.mode.jsonOut {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, flags *cliFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env:    envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	s, err := loadSettings(flags)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		if errors.Is(err, ErrInvalidWorkDir) {
			result.Status = "errors"
			return result
		}
		// Keep checking with defaults.
		workDir, _ := resolveWorkDir(flags.common.workDir)
		s = &settings{workDir: workDir, cfg: config.DefaultConfig()}
	}
	result.Project.WorkDir = s.workDir
	result.Project.Config = flags.common.config

	runner := env.runner(false)
	checkTools(ctx, runner, s.cfg, result)
	checkGitRepository(ctx, runner, s, result)
	checkDefaults(s, result)
	checkInputs(flags, s, result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkTools probes each collaborator with "--version". The converter is
// required; the diff tools are only needed for tagged runs.
func checkTools(ctx context.Context, runner papermate.CommandRunner, cfg *config.Config, result *doctorResult) {
	tools := []toolInfo{
		{Name: papermate.ToolPandoc, Binary: cfg.Tools.Pandoc, Required: true},
		{Name: papermate.ToolGit, Binary: cfg.Tools.Git},
		{Name: papermate.ToolLatexDiff, Binary: cfg.Tools.LatexDiff},
		{Name: papermate.ToolLatex, Binary: cfg.Tools.Latex},
	}

	for i := range tools {
		tool := &tools[i]
		version, err := probe(ctx, runner, papermate.Command{
			Tool: tool.Name,
			Path: tool.Binary,
			Args: []string{"--version"},
		})
		switch {
		case errors.Is(err, papermate.ErrToolNotFound):
			msg := fmt.Sprintf("%s not found (%s)", tool.Name, tool.Binary)
			if tool.Required {
				result.Errors = append(result.Errors, msg)
			} else {
				result.Warnings = append(result.Warnings, msg+": tagged runs will fail")
			}
			continue
		case err != nil:
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not get %s version: %v", tool.Name, err))
		}

		tool.Found = true
		tool.Version = version
		if path, err := exec.LookPath(tool.Binary); err == nil {
			tool.Path = path
		}
	}
	result.Tools = tools
}

// checkGitRepository verifies that tagged versions can be retrieved.
func checkGitRepository(ctx context.Context, runner papermate.CommandRunner, s *settings, result *doctorResult) {
	out, err := probe(ctx, runner, papermate.Command{
		Tool: papermate.ToolGit,
		Path: s.cfg.Tools.Git,
		Args: []string{"rev-parse", "--is-inside-work-tree"},
		Dir:  s.workDir,
	})
	if errors.Is(err, papermate.ErrToolNotFound) {
		return // already reported
	}
	if err != nil || out != "true" {
		result.Warnings = append(result.Warnings, "working directory is not in a git repository: --tags will fail")
		return
	}
	result.Project.GitRepository = true
}

// checkDefaults verifies the pandoc defaults file exists and is a YAML mapping.
func checkDefaults(s *settings, result *doctorResult) {
	if s.cfg.Defaults == "" {
		return
	}
	path := s.cfg.Defaults
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.workDir, path)
	}
	result.Project.Defaults = s.cfg.Defaults

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("defaults file %s: %v", s.cfg.Defaults, err))
		return
	}
	if _, err := yamlutil.Mapping(data); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("defaults file %s is not valid YAML: %v", s.cfg.Defaults, err))
		return
	}
	result.Project.DefaultsValid = true
}

// checkInputs runs default discovery and the citation check.
func checkInputs(flags *cliFlags, s *settings, result *doctorResult) {
	files, err := papermate.ResolveFiles(s.workDir, s.cfg.BibDir, papermate.FileArgs{
		Manuscript:   flags.input.manuscript,
		CSL:          flags.input.csl,
		Bibliography: flags.input.bibliography,
	})
	if err != nil {
		result.Errors = append(result.Errors, err.Error()+hintFor(err))
		return
	}
	result.Project.Manuscript = files.Manuscript
	result.Project.CSL = files.CSL
	result.Project.Bibliography = files.Bibliography

	source, err := os.ReadFile(files.Manuscript)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%v: %v", ErrReadManuscript, err))
		return
	}
	summary := papermate.Inspect(source)
	result.Project.Words = summary.Words
	result.Project.Citations = len(summary.Citations)

	bib, err := os.ReadFile(files.Bibliography)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not read bibliography: %v", err))
		return
	}
	for _, key := range papermate.MissingCitations(summary.Citations, papermate.BibliographyKeys(bib)) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("citation @%s not found in %s", key, filepath.Base(files.Bibliography)))
	}
}

// probe runs a short command and returns the first line of its output.
func probe(ctx context.Context, runner papermate.CommandRunner, c papermate.Command) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var out bytes.Buffer
	c.Stdout = &out
	if err := runner.Run(ctx, c); err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(out.String(), "\n")
	return strings.TrimSpace(line), nil
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "papermate check")
	fmt.Fprintln(w)

	// Tools section
	fmt.Fprintln(w, "Tools")
	for _, t := range r.Tools {
		switch {
		case !t.Found && t.Required:
			fmt.Fprintf(w, "  [ERROR] %s: not found (%s)\n", t.Name, t.Binary)
		case !t.Found:
			fmt.Fprintf(w, "  [WARN] %s: not found (%s)\n", t.Name, t.Binary)
		case t.Version != "":
			fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Version)
		default:
			fmt.Fprintf(w, "  [OK] %s: %s\n", t.Name, t.Binary)
		}
	}
	fmt.Fprintln(w)

	// Project section
	p := r.Project
	fmt.Fprintln(w, "Project")
	fmt.Fprintf(w, "  [OK] Working directory: %s\n", p.WorkDir)
	if p.Config != "" {
		fmt.Fprintf(w, "  [OK] Config: %s\n", p.Config)
	}
	if p.GitRepository {
		fmt.Fprintln(w, "  [OK] Git repository: yes")
	}
	if p.DefaultsValid {
		fmt.Fprintf(w, "  [OK] Defaults: %s\n", p.Defaults)
	}
	if p.Manuscript != "" {
		fmt.Fprintf(w, "  [OK] Manuscript: %s (%d words, %d citations)\n", p.Manuscript, p.Words, p.Citations)
		fmt.Fprintf(w, "  [OK] Citation style: %s\n", p.CSL)
		fmt.Fprintf(w, "  [OK] Bibliography: %s\n", p.Bibliography)
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to render")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
