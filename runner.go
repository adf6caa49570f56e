package papermate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"

	"github.com/alnah/go-papermate/internal/process"
)

// Collaborator keys used in Command.Tool and ToolError.Tool.
const (
	ToolPandoc    = "pandoc"
	ToolGit       = "git"
	ToolLatexDiff = "latexdiff"
	ToolLatex     = "latex"
)

// Command is one external tool invocation.
type Command struct {
	Tool   string    // collaborator key, used in errors
	Path   string    // binary name or path
	Args   []string  // arguments, never interpreted by a shell
	Dir    string    // process working directory
	Stdout io.Writer // receives the tool's standard output; nil discards it
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
// Run blocks until the command exits and returns a *ToolError on failure.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	// Echo, when set, receives a copy of the tool's stderr and of any
	// stdout that is not redirected by Command.Stdout.
	Echo io.Writer
}

// Run starts the command, waits for it, and maps failures to *ToolError.
// Stdin is not connected, so tools that prompt on error see EOF instead of
// hanging.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...) // #nosec G204 -- binary and args come from the user's own config and flags
	cmd.Dir = c.Dir
	process.Prepare(cmd)

	// Tools like xelatex report errors on stdout, so undirected stdout is
	// kept for the error message.
	var stderr, stdout bytes.Buffer
	cmd.Stderr = r.tee(&stderr)
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	} else {
		cmd.Stdout = r.tee(&stdout)
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", c.Tool, ctxErr)
	}

	diag := stderr.String()
	if diag == "" {
		diag = stdout.String()
	}
	return &ToolError{
		Tool:     c.Tool,
		Path:     c.Path,
		Args:     c.Args,
		ExitCode: exitCode(err),
		Stderr:   diag,
		Err:      err,
	}
}

func (r *ExecRunner) tee(buf *bytes.Buffer) io.Writer {
	if r.Echo == nil {
		return buf
	}
	return io.MultiWriter(buf, r.Echo)
}

// exitCode returns the process exit status, or -1 when it did not exit normally.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// isNotFound reports whether err means the binary could not be located.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
