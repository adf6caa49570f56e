package papermate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-papermate/internal/fileutil"
)

// FileArgs holds the file paths given explicitly by the user.
// Empty fields are discovered by ResolveFiles.
type FileArgs struct {
	Manuscript   string
	CSL          string
	Bibliography string
}

// ResolveFiles builds the FileSet for a run without touching any external tool.
//
// Explicit paths are resolved against workDir and must name existing files.
// An omitted manuscript is the single *.md file in workDir; an omitted
// citation style or bibliography is the single *.csl or *.bib file in
// bibDir (itself relative to workDir unless absolute). Zero or several
// candidates is a *DiscoveryError.
func ResolveFiles(workDir, bibDir string, args FileArgs) (FileSet, error) {
	if !filepath.IsAbs(bibDir) {
		bibDir = filepath.Join(workDir, bibDir)
	}

	manuscript, err := resolveFile(workDir, args.Manuscript, workDir, "md", "input")
	if err != nil {
		return FileSet{}, err
	}
	csl, err := resolveFile(workDir, args.CSL, bibDir, "csl", "csl")
	if err != nil {
		return FileSet{}, err
	}
	bib, err := resolveFile(workDir, args.Bibliography, bibDir, "bib", "bib")
	if err != nil {
		return FileSet{}, err
	}

	return FileSet{Manuscript: manuscript, CSL: csl, Bibliography: bib}, nil
}

// resolveFile returns explicit (made absolute against workDir) when set,
// otherwise the single *.extension file in dir.
func resolveFile(workDir, explicit, dir, extension, flagName string) (string, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("--%s: %w: %s", flagName, ErrFileNotFound, explicit)
		}
		return path, nil
	}

	candidates, err := fileutil.ListByExtension(dir, extension)
	if err != nil {
		return "", fmt.Errorf("discovering --%s: %w", flagName, err)
	}
	if len(candidates) != 1 {
		return "", &DiscoveryError{
			Flag:       flagName,
			Dir:        dir,
			Extension:  extension,
			Candidates: candidates,
		}
	}
	return candidates[0], nil
}
