package papermate

import (
	"fmt"
	"strings"
	"unicode"
)

// Format is an output format understood by the converter.
type Format string

// Output formats. The value doubles as the output file extension.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTeX  Format = "tex"
)

// SelectFormat derives the output format from the forcing flags.
// TeX takes precedence over DOCX, and PDF is the default.
func SelectFormat(tex, docx bool) Format {
	switch {
	case tex:
		return FormatTeX
	case docx:
		return FormatDOCX
	default:
		return FormatPDF
	}
}

// Validate rejects formats other than pdf, docx and tex.
func (f Format) Validate() error {
	switch f {
	case FormatPDF, FormatDOCX, FormatTeX:
		return nil
	}
	return fmt.Errorf("%w: %q (must be pdf, docx, or tex)", ErrInvalidFormat, string(f))
}

// FileSet holds the three inputs of every conversion.
// Paths are resolved against the working directory by ResolveFiles.
type FileSet struct {
	Manuscript   string // Markdown source
	CSL          string // citation style
	Bibliography string // BibTeX database
}

// Tags is the ordered list of git tags a run renders. Its length selects
// the mode: none renders the working copy, two also produce a diff.
type Tags []string

// MaxTags is the number of tags a diff compares.
const MaxTags = 2

// Current reports whether the working copy is rendered (no tags).
func (t Tags) Current() bool { return len(t) == 0 }

// Diffable reports whether a diff document is produced (exactly two tags).
func (t Tags) Diffable() bool { return len(t) == MaxTags }

// DiffStem returns the file stem of the diff document, "<tag1>_<tag2>_diff".
// Empty unless Diffable.
func (t Tags) DiffStem() string {
	if !t.Diffable() {
		return ""
	}
	return t[0] + "_" + t[1] + "_diff"
}

// Validate checks the tag count and that every tag is safe to pass to git
// as a revision and to use as a file stem.
func (t Tags) Validate() error {
	if len(t) > MaxTags {
		return fmt.Errorf("%w: got %d (%s)", ErrTooManyTags, len(t), strings.Join(t, ", "))
	}
	for _, tag := range t {
		if err := validateTag(tag); err != nil {
			return err
		}
	}
	return nil
}

func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: empty tag", ErrInvalidTag)
	}
	if strings.HasPrefix(tag, "-") {
		return fmt.Errorf("%w: %q starts with '-'", ErrInvalidTag, tag)
	}
	if strings.ContainsAny(tag, ":\\\x00") {
		return fmt.Errorf("%w: %q contains ':', '\\' or NUL", ErrInvalidTag, tag)
	}
	// Tags become file stems in the working directory.
	if strings.Contains(tag, "/") || tag == "." || tag == ".." {
		return fmt.Errorf("%w: %q cannot be used as a file name", ErrInvalidTag, tag)
	}
	for _, r := range tag {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains whitespace or control characters", ErrInvalidTag, tag)
		}
	}
	return nil
}

// Request is one resolved papermate run.
type Request struct {
	Files  FileSet
	Format Format
	Tags   Tags
}

// Validate checks the format and tags.
func (r Request) Validate() error {
	if err := r.Format.Validate(); err != nil {
		return err
	}
	return r.Tags.Validate()
}

// RenderFormat is the format each converter call produces: TeX whenever a
// diff is requested, since latexdiff compares TeX sources, otherwise Format.
func (r Request) RenderFormat() Format {
	if r.Tags.Diffable() {
		return FormatTeX
	}
	return r.Format
}

// Result lists what a run left behind.
type Result struct {
	Outputs  []string // deliverables, relative to the working directory
	Removed  []string // intermediates deleted by cleanup
	Warnings []string // non-fatal problems (cleanup failures)
}

// Tools names the binaries of the external collaborators.
type Tools struct {
	Pandoc    string
	Git       string
	LatexDiff string
	Latex     string
}

// DefaultTools returns the binary names looked up on PATH.
func DefaultTools() Tools {
	return Tools{
		Pandoc:    "pandoc",
		Git:       "git",
		LatexDiff: "latexdiff",
		Latex:     "xelatex",
	}
}

// withDefaults fills empty fields from DefaultTools.
func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	if t.Pandoc == "" {
		t.Pandoc = d.Pandoc
	}
	if t.Git == "" {
		t.Git = d.Git
	}
	if t.LatexDiff == "" {
		t.LatexDiff = d.LatexDiff
	}
	if t.Latex == "" {
		t.Latex = d.Latex
	}
	return t
}
