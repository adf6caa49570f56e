package papermate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fakeRunner records commands and imitates the side effects of the real
// tools in Command.Dir:
//   - pandoc writes the file named by -o
//   - git cat-file writes snapshots[tag] to stdout
//   - latexdiff writes a marked-up document to stdout
//   - the TeX engine writes .pdf, .aux and .log next to its input
type fakeRunner struct {
	mu        sync.Mutex
	calls     []Command
	snapshots map[string]string // tag -> manuscript content
	fail      map[string]error  // tool -> error returned instead of running
	noPDF     bool              // engine "succeeds" without writing a PDF
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		snapshots: map[string]string{},
		fail:      map[string]error{},
	}
}

func (f *fakeRunner) Run(_ context.Context, c Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	failErr := f.fail[c.Tool]
	f.mu.Unlock()

	if failErr != nil {
		return failErr
	}

	switch c.Tool {
	case ToolPandoc:
		out := argAfter(c.Args, "-o")
		if out == "" {
			return errors.New("fake pandoc: missing -o")
		}
		return os.WriteFile(filepath.Join(c.Dir, out), []byte("rendered "+c.Args[0]), 0o600)

	case ToolGit:
		object := c.Args[len(c.Args)-1]
		tag, _, _ := strings.Cut(object, ":")
		content, ok := f.snapshots[tag]
		if !ok {
			return &ToolError{Tool: ToolGit, Path: c.Path, Args: c.Args, ExitCode: 128,
				Stderr: fmt.Sprintf("fatal: path not found in '%s'", tag), Err: errors.New("exit status 128")}
		}
		_, err := fmt.Fprint(c.Stdout, content)
		return err

	case ToolLatexDiff:
		_, err := fmt.Fprintf(c.Stdout, "\\DIFadd{%s vs %s}", c.Args[0], c.Args[1])
		return err

	case ToolLatex:
		tex := c.Args[len(c.Args)-1]
		stem := strings.TrimSuffix(tex, ".tex")
		exts := []string{"aux", "log"}
		if !f.noPDF {
			exts = append(exts, "pdf")
		}
		for _, ext := range exts {
			if err := os.WriteFile(filepath.Join(c.Dir, stem+"."+ext), []byte(ext), 0o600); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("fake runner: unexpected tool %q", c.Tool)
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

func (f *fakeRunner) callsFor(tool string) []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Command
	for _, c := range f.calls {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
