package papermate

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	// Discovery errors.
	ErrNoCandidate        = errors.New("no candidate file found")
	ErrAmbiguousCandidate = errors.New("more than one candidate file found")
	ErrFileNotFound       = errors.New("file not found")

	// Argument errors.
	ErrInvalidTag    = errors.New("invalid tag")
	ErrTooManyTags   = errors.New("at most two tags can be given")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrWatchTagged   = errors.New("watch mode only renders the working copy")

	// External process errors.
	ErrToolFailed   = errors.New("external tool failed")
	ErrToolNotFound = errors.New("external tool not found")
)

// DiscoveryError reports a default file that could not be chosen
// unambiguously. It unwraps to ErrNoCandidate or ErrAmbiguousCandidate.
type DiscoveryError struct {
	Flag       string   // flag that would have supplied the file, e.g. "csl"
	Dir        string   // directory that was scanned
	Extension  string   // extension searched for, without dot
	Candidates []string // files found (empty for ErrNoCandidate)
}

func (e *DiscoveryError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("%s: no *.%s file in %s", ErrNoCandidate, e.Extension, e.Dir)
	}
	return fmt.Sprintf("%s: *.%s in %s matches %s",
		ErrAmbiguousCandidate, e.Extension, e.Dir, strings.Join(e.Candidates, ", "))
}

func (e *DiscoveryError) Unwrap() error {
	if len(e.Candidates) == 0 {
		return ErrNoCandidate
	}
	return ErrAmbiguousCandidate
}

// maxStderrInError bounds how much captured output is quoted in an error.
const maxStderrInError = 2048

// ToolError reports a failed external command.
type ToolError struct {
	Tool     string   // collaborator key: "pandoc", "git", "latexdiff", "latex"
	Path     string   // binary that was invoked
	Args     []string // arguments, without the binary
	ExitCode int      // -1 when the process did not start or was killed
	Stderr   string   // captured diagnostic output
	Err      error    // underlying os/exec error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Tool)
	if e.notFound() {
		fmt.Fprintf(&b, ": %s: %s", ErrToolNotFound, e.Path)
		return b.String()
	}
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
	} else {
		fmt.Fprintf(&b, " failed: %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		if len(msg) > maxStderrInError {
			msg = "..." + msg[len(msg)-maxStderrInError:]
		}
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is reports ErrToolNotFound for binaries that could not be located and
// ErrToolFailed for everything else.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrToolNotFound:
		return e.notFound()
	case ErrToolFailed:
		return !e.notFound()
	}
	return false
}

func (e *ToolError) notFound() bool {
	return isNotFound(e.Err)
}
