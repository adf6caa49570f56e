package main

import (
	"errors"
	"os"

	papermate "github.com/alnah/go-papermate"
	"github.com/alnah/go-papermate/internal/config"
)

// Exit codes for papermate CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, tags, or config
	ExitIO      = 3 // Input discovery failed, file not found, permission denied
	ExitTool    = 4 // pandoc, git, latexdiff or the TeX engine failed or is missing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// External tool errors (exit 4). Checked first: a missing binary also
	// matches fs.ErrNotExist.
	if errors.Is(err, papermate.ErrToolFailed) ||
		errors.Is(err, papermate.ErrToolNotFound) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, papermate.ErrNoCandidate) ||
		errors.Is(err, papermate.ErrAmbiguousCandidate) ||
		errors.Is(err, papermate.ErrFileNotFound) ||
		errors.Is(err, ErrReadManuscript) ||
		errors.Is(err, ErrInvalidWorkDir) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, papermate.ErrInvalidTag) ||
		errors.Is(err, papermate.ErrTooManyTags) ||
		errors.Is(err, papermate.ErrInvalidFormat) ||
		errors.Is(err, papermate.ErrWatchTagged) ||
		errors.Is(err, ErrInvalidFlag) ||
		errors.Is(err, ErrUnexpectedArgs) ||
		errors.Is(err, ErrWatchWithTags) ||
		errors.Is(err, ErrJSONWithoutCheck) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
