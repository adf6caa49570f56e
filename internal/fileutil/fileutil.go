// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// ValidateExtension checks that the extension is safe for use in file names
// and glob patterns. The extension is given without its leading dot.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00*?[") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// ListByExtension returns the regular files directly inside dir whose name
// ends in "."+extension, sorted by name. Subdirectories are not searched.
// A missing dir yields an empty list, not an error.
func ListByExtension(dir, extension string) ([]string, error) {
	if err := ValidateExtension(extension); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	suffix := "." + extension
	var matches []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), suffix) || e.Name() == suffix {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if !FileExists(path) {
			continue
		}
		matches = append(matches, path)
	}
	sort.Strings(matches)
	return matches, nil
}

// Stem returns the base name of path without its extension.
//
// Examples:
//   - "paper.md" -> "paper"
//   - "drafts/v2.paper.md" -> "v2.paper"
//   - "README" -> "README"
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RemoveIfExists deletes path and reports whether something was removed.
// A path that does not exist is not an error.
func RemoveIfExists(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "papermate" -> false (name)
//   - "./papermate.yaml" -> true (relative path)
//   - "/etc/papermate.yaml" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
