package papermate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-papermate/internal/fileutil"
)

// filePermissions is rw-r--r--: retrieved snapshots and diffs are plain documents.
const filePermissions = 0o644

// intermediateExtensions are removed for every stem after a diff run.
var intermediateExtensions = []string{"md", "tex", "aux", "log"}

// retrieve writes the manuscript as committed at tag to "<tag>.md".
func (p *Paper) retrieve(ctx context.Context, tag, manuscript string) error {
	rel := filepath.ToSlash(p.rel(manuscript))
	target := tag + ".md"

	err := p.writeOutput(ctx, target, Command{
		Tool: ToolGit,
		Path: p.tools.Git,
		Args: []string{"cat-file", "-p", tag + ":./" + rel},
	})
	if err != nil {
		return fmt.Errorf("retrieving %s at tag %s: %w", rel, tag, err)
	}
	return nil
}

// diff marks up the changes between the two rendered tags and typesets
// the result. Returns the PDF name.
func (p *Paper) diff(ctx context.Context, tags Tags) (string, error) {
	stem := tags.DiffStem()
	tex := stem + ".tex"
	pdf := stem + ".pdf"

	err := p.writeOutput(ctx, tex, Command{
		Tool: ToolLatexDiff,
		Path: p.tools.LatexDiff,
		Args: []string{tags[0] + ".tex", tags[1] + ".tex"},
	})
	if err != nil {
		return "", fmt.Errorf("diffing %s and %s: %w", tags[0], tags[1], err)
	}

	err = p.run(ctx, Command{
		Tool: ToolLatex,
		Path: p.tools.Latex,
		Args: []string{"-interaction=nonstopmode", tex},
	})
	if err != nil {
		return "", fmt.Errorf("typesetting %s: %w", tex, err)
	}
	if !fileutil.FileExists(p.path(pdf)) {
		return "", fmt.Errorf("typesetting %s: %w: %s was not produced", tex, ErrToolFailed, pdf)
	}
	return pdf, nil
}

// writeOutput runs c with its standard output written to name in the
// working directory. A partial file is left for cleanup on failure.
func (p *Paper) writeOutput(ctx context.Context, name string, c Command) error {
	f, err := os.OpenFile(p.path(name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermissions) // #nosec G304 -- name is built from validated tags
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	c.Stdout = f
	runErr := p.run(ctx, c)
	closeErr := f.Close()

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("writing %s: %w", name, closeErr)
	}
	return nil
}

// cleanupTargets lists the intermediates of a tagged run. A single tag
// leaves only its retrieved snapshot behind, since "<tag>.<format>" is the
// deliverable. Two tags also leave TeX sources and engine by-products.
func cleanupTargets(tags Tags) []string {
	if !tags.Diffable() {
		targets := make([]string, 0, len(tags))
		for _, tag := range tags {
			targets = append(targets, tag+".md")
		}
		return targets
	}

	stems := []string{tags[0], tags[1], tags.DiffStem()}
	targets := make([]string, 0, len(stems)*len(intermediateExtensions))
	for _, stem := range stems {
		for _, ext := range intermediateExtensions {
			targets = append(targets, stem+"."+ext)
		}
	}
	return targets
}

// cleanup removes the intermediates of a tagged run. Missing files are
// skipped silently; other failures become warnings in res.
func (p *Paper) cleanup(tags Tags, res *Result) {
	for _, name := range cleanupTargets(tags) {
		removed, err := fileutil.RemoveIfExists(p.path(name))
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not remove %s: %v", name, err))
			continue
		}
		if removed {
			p.logf("  removed %s", name)
			res.Removed = append(res.Removed, name)
		}
	}
}
