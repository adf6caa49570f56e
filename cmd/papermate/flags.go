package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	papermate "github.com/alnah/go-papermate"
)

// Sentinel errors for argument handling.
var (
	ErrInvalidFlag      = errors.New("invalid command line")
	ErrUnexpectedArgs   = errors.New("unexpected arguments (tags must follow --tags)")
	ErrWatchWithTags    = errors.New("--watch cannot be combined with --tags")
	ErrJSONWithoutCheck = errors.New("--json is only valid with --check")
)

// commonFlags holds flags shared by every mode.
type commonFlags struct {
	config  string
	workDir string
	quiet   bool
	verbose bool
}

// inputFlags holds explicit input files. Empty values are discovered.
type inputFlags struct {
	manuscript   string
	csl          string
	bibliography string
}

// formatFlags holds the output format switches.
type formatFlags struct {
	tex  bool
	docx bool
}

// modeFlags selects what the run does.
type modeFlags struct {
	tags       []string
	tagsSet    bool // --tags given, possibly with an empty value
	argsBefore int  // positional arguments seen before the first --tags
	watch      bool
	check      bool
	jsonOut    bool
	completion string
	shellSet   bool // --completion given, possibly with an empty value
	version    bool
	help       bool
}

// cliFlags holds all papermate flags.
type cliFlags struct {
	common commonFlags
	input  inputFlags
	format formatFlags
	mode   modeFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.config, "config", "", "config file name or path")
	fs.StringVar(&f.workDir, "workdir", ".", "working directory")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show commands, timing and tool output")
}

// addInputFlags adds input file flags to a FlagSet.
func addInputFlags(fs *flag.FlagSet, f *inputFlags) {
	fs.StringVar(&f.manuscript, "input", "", "Markdown manuscript (e.g. paper.md)")
	fs.StringVar(&f.csl, "csl", "", "citation style file (e.g. apa.csl)")
	fs.StringVar(&f.bibliography, "bib", "", "BibTeX references (e.g. refs.bib)")
}

// addFormatFlags adds output format flags to a FlagSet.
func addFormatFlags(fs *flag.FlagSet, f *formatFlags) {
	fs.BoolVarP(&f.tex, "tex", "t", false, "output TeX instead of PDF")
	fs.BoolVarP(&f.docx, "docx", "d", false, "output DOCX instead of PDF")
}

// addModeFlags adds mode flags to a FlagSet.
func addModeFlags(fs *flag.FlagSet, f *modeFlags) {
	fs.StringSliceVar(&f.tags, "tags", nil, "one or two git tags; two produce a diff PDF")
	fs.BoolVar(&f.watch, "watch", false, "re-render the working copy when inputs change")
	fs.BoolVar(&f.check, "check", false, "check tools and inputs, then exit")
	fs.BoolVar(&f.jsonOut, "json", false, "print the --check report as JSON")
	fs.StringVar(&f.completion, "completion", "", "print a shell completion script (bash, zsh, fish, powershell)")
	fs.BoolVar(&f.version, "version", false, "show version information")
	fs.BoolVarP(&f.help, "help", "h", false, "show help")
}

// newFlagSet registers every papermate flag into f. Parsing and shell
// completion share it, so completions always match what parseFlags accepts.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("papermate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addCommonFlags(fs, &f.common)
	addInputFlags(fs, &f.input)
	addFormatFlags(fs, &f.format)
	addModeFlags(fs, &f.mode)

	fs.Usage = func() {}
	return fs
}

// parseFlags parses papermate flags and returns the positional arguments.
// Parse errors are wrapped with ErrInvalidFlag; usage is printed by the caller.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)

	firstTags := -1
	err := fs.ParseAll(args, func(fl *flag.Flag, value string) error {
		if fl.Name == "tags" && firstTags < 0 {
			firstTags = len(fs.Args())
		}
		return fs.Set(fl.Name, value)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}
	f.mode.tagsSet = fs.Changed("tags")
	f.mode.shellSet = fs.Changed("completion")
	if firstTags > 0 {
		f.mode.argsBefore = firstTags
	}

	return f, fs.Args(), nil
}

// resolveTags combines --tags values with the positional arguments that
// follow them, so that "--tags v1 v2" reads as two tags. Arguments before
// --tags are rejected: "v2 --tags v1" would otherwise reverse the order.
func resolveTags(f *cliFlags, positional []string) ([]string, error) {
	if !f.mode.tagsSet {
		if len(positional) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedArgs, positional)
		}
		return nil, nil
	}
	if n := f.mode.argsBefore; n > 0 && n <= len(positional) {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedArgs, positional[:n])
	}
	tags := make([]string, 0, len(f.mode.tags)+len(positional))
	tags = append(tags, f.mode.tags...)
	tags = append(tags, positional...)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: --tags needs at least one tag", papermate.ErrInvalidTag)
	}
	return tags, nil
}

// validateModes rejects flag combinations that have no meaning.
func validateModes(f *cliFlags, tags []string) error {
	if f.mode.watch && len(tags) > 0 {
		return ErrWatchWithTags
	}
	if f.mode.jsonOut && !f.mode.check {
		return ErrJSONWithoutCheck
	}
	return nil
}
