package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	papermate "github.com/alnah/go-papermate"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake tools
// ---------------------------------------------------------------------------

// fakeRunner imitates pandoc, git, latexdiff and the TeX engine in Command.Dir.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []papermate.Command
	snapshots map[string]string // tag -> committed manuscript
	missing   map[string]bool   // tool keys whose binary "does not exist"
	fail      map[string]string // tool key -> stderr of a failing run
	notRepo   bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		snapshots: map[string]string{"v1": "# One\n", "v2": "# Two\n"},
		missing:   map[string]bool{},
		fail:      map[string]string{},
	}
}

func (f *fakeRunner) Run(_ context.Context, c papermate.Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if f.missing[c.Tool] {
		return &papermate.ToolError{Tool: c.Tool, Path: c.Path, Args: c.Args, ExitCode: -1,
			Err: &exec.Error{Name: c.Path, Err: exec.ErrNotFound}}
	}
	if stderr, ok := f.fail[c.Tool]; ok {
		return &papermate.ToolError{Tool: c.Tool, Path: c.Path, Args: c.Args, ExitCode: 1,
			Stderr: stderr, Err: errors.New("exit status 1")}
	}

	if len(c.Args) == 1 && c.Args[0] == "--version" {
		_, err := fmt.Fprintf(c.Stdout, "%s 1.0\nmore details\n", c.Tool)
		return err
	}

	switch c.Tool {
	case papermate.ToolPandoc:
		out := c.Args[len(c.Args)-1]
		return os.WriteFile(filepath.Join(c.Dir, out), []byte("out"), 0o600)
	case papermate.ToolGit:
		if c.Args[0] == "rev-parse" {
			if f.notRepo {
				return &papermate.ToolError{Tool: c.Tool, ExitCode: 128, Stderr: "fatal: not a git repository", Err: errors.New("exit status 128")}
			}
			_, err := fmt.Fprintln(c.Stdout, "true")
			return err
		}
		tag, _, _ := strings.Cut(c.Args[len(c.Args)-1], ":")
		content, ok := f.snapshots[tag]
		if !ok {
			return &papermate.ToolError{Tool: c.Tool, Path: c.Path, Args: c.Args, ExitCode: 128,
				Stderr: "fatal: invalid object name", Err: errors.New("exit status 128")}
		}
		_, err := fmt.Fprint(c.Stdout, content)
		return err
	case papermate.ToolLatexDiff:
		_, err := fmt.Fprint(c.Stdout, "\\DIFadd{}")
		return err
	case papermate.ToolLatex:
		stem := strings.TrimSuffix(c.Args[len(c.Args)-1], ".tex")
		for _, ext := range []string{"pdf", "aux", "log"} {
			if err := os.WriteFile(filepath.Join(c.Dir, stem+"."+ext), []byte(ext), 0o600); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unexpected tool %q", c.Tool)
}

func (f *fakeRunner) tools() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tools []string
	for _, c := range f.calls {
		tools = append(tools, c.Tool)
	}
	return tools
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Projects and environments
// ---------------------------------------------------------------------------

const testManuscript = `---
title: Sea Ice
---

# Introduction

Sea ice declines [@smith2020; @ghost2021].
`

const testBibliography = `@article{smith2020,
  title = {Sea Ice},
}
`

// newProject creates a working directory with a manuscript, a defaults
// file, and a bib directory holding one style and one bibliography.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "paper.md", testManuscript)
	writeFile(t, dir, "header.yaml", "pdf-engine: xelatex\n")
	writeFile(t, dir, "bib/apa.csl", "<style/>")
	writeFile(t, dir, "bib/refs.bib", testBibliography)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// newTestEnv returns an environment with captured output and runner.
func newTestEnv(runner papermate.CommandRunner) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Runner: runner,
	}
	return env, &stdout, &stderr
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
