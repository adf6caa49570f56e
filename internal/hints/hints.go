// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// toolEnvVars maps a collaborator tool key to the environment variable that
// overrides its binary.
var toolEnvVars = map[string]string{
	"pandoc":    "PAPERMATE_PANDOC",
	"git":       "PAPERMATE_GIT",
	"latexdiff": "PAPERMATE_LATEXDIFF",
	"latex":     "PAPERMATE_LATEX",
}

// toolPackages names where each collaborator usually comes from.
var toolPackages = map[string]string{
	"pandoc":    "install pandoc (https://pandoc.org/installing.html)",
	"git":       "install git",
	"latexdiff": "install latexdiff (shipped with TeX Live and MiKTeX)",
	"latex":     "install a TeX distribution providing xelatex",
}

// ForToolNotFound returns hints for a collaborator binary missing from PATH.
// The override variable is only suggested when it is not already set.
func ForToolNotFound(tool string) string {
	var hints []string
	if pkg, ok := toolPackages[tool]; ok {
		hints = append(hints, pkg)
	}
	if env, ok := toolEnvVars[tool]; ok && os.Getenv(env) == "" {
		hints = append(hints, "set "+env+" to use a binary outside PATH")
	}
	return formatHints(hints)
}

// ForTagRetrieval returns hints for a failed git retrieval of a tagged manuscript.
func ForTagRetrieval(tag string) string {
	return format("check that tag " + tag + " exists (git tag --list) and that the manuscript was committed at that tag")
}

// ForLatexFailure returns hints for a failed typesetting of the diff document.
func ForLatexFailure() string {
	return format("rerun with --verbose to see the engine output; fonts set in the defaults file must be installed")
}

// ForNoCandidate returns hints when default discovery found no file.
func ForNoCandidate(flagName, dir, extension string) string {
	return format("place one *." + extension + " file in " + dir + " or pass --" + flagName)
}

// ForAmbiguousCandidate returns hints when default discovery found several files.
func ForAmbiguousCandidate(flagName string) string {
	return format("pass --" + flagName + " to choose one")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/papermate/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/papermate") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForWorkDir returns hints for an unusable working directory.
func ForWorkDir() string {
	return format("check --workdir exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
