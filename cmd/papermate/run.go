package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	papermate "github.com/alnah/go-papermate"
	"github.com/alnah/go-papermate/internal/config"
	"github.com/alnah/go-papermate/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrInvalidWorkDir = errors.New("working directory is not usable")
	ErrReadManuscript = errors.New("failed to read manuscript")
)

// settings is the configuration of one run after flags, environment and
// config file are merged.
type settings struct {
	workDir string
	cfg     *config.Config
}

// run executes papermate with args (without the program name) and returns
// the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'papermate --help' for usage.")
		return exitCodeFor(err)
	}

	if flags.mode.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if flags.mode.version {
		fmt.Fprintf(env.Stdout, "papermate %s\n", Version)
		return ExitSuccess
	}
	if flags.mode.shellSet {
		if err := runCompletion(flags.mode.completion, env); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	}

	warnUnknownEnvVars(env.Stderr)

	if flags.mode.check {
		return runDoctorCmd(ctx, flags, env)
	}

	if err := runPaper(ctx, flags, positional, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runPaper resolves the request, renders it, and watches when asked.
func runPaper(ctx context.Context, flags *cliFlags, positional []string, env *Environment) error {
	tags, err := resolveTags(flags, positional)
	if err != nil {
		return err
	}
	if err := validateModes(flags, tags); err != nil {
		return err
	}

	s, err := loadSettings(flags)
	if err != nil {
		return err
	}

	req, err := resolveRequest(flags, s, tags)
	if err != nil {
		return err
	}

	out := newConsole(env, flags.common)
	paper := newPaper(s, env, out)

	if req.Tags.Current() {
		if err := inspectManuscript(req.Files, out); err != nil {
			return err
		}
	}

	start := env.Now()
	res, err := paper.Make(ctx, req)
	printResult(out, res, env.Now().Sub(start))
	if err != nil {
		return err
	}

	if !flags.mode.watch {
		return nil
	}
	return watch(ctx, paper, req, s, env, out)
}

// loadSettings merges defaults, the config file, environment variables and
// flags, in increasing order of precedence.
func loadSettings(flags *cliFlags) (*settings, error) {
	workDir, err := resolveWorkDir(flags.common.workDir)
	if err != nil {
		return nil, err
	}

	envCfg := loadEnvConfig()
	name := flags.common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(workDir, name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(workDir, name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	return &settings{workDir: workDir, cfg: cfg}, nil
}

// resolveWorkDir returns dir as an absolute path to an existing directory.
func resolveWorkDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v%s", ErrInvalidWorkDir, dir, err, hints.ForWorkDir())
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory%s", ErrInvalidWorkDir, dir, hints.ForWorkDir())
	}
	return abs, nil
}

// resolveRequest discovers the input files and builds a validated request.
// No external tool runs before it succeeds.
func resolveRequest(flags *cliFlags, s *settings, tags []string) (papermate.Request, error) {
	req := papermate.Request{
		Format: papermate.SelectFormat(flags.format.tex, flags.format.docx),
		Tags:   papermate.Tags(tags),
	}
	if err := req.Validate(); err != nil {
		return papermate.Request{}, err
	}

	files, err := papermate.ResolveFiles(s.workDir, s.cfg.BibDir, papermate.FileArgs{
		Manuscript:   flags.input.manuscript,
		CSL:          flags.input.csl,
		Bibliography: flags.input.bibliography,
	})
	if err != nil {
		return papermate.Request{}, err
	}
	req.Files = files
	return req, nil
}

// newPaper builds the pipeline from the merged settings.
func newPaper(s *settings, env *Environment, out *console) *papermate.Paper {
	return papermate.New(s.workDir,
		papermate.WithTools(papermate.Tools{
			Pandoc:    s.cfg.Tools.Pandoc,
			Git:       s.cfg.Tools.Git,
			LatexDiff: s.cfg.Tools.LatexDiff,
			Latex:     s.cfg.Tools.Latex,
		}),
		papermate.WithDefaults(s.cfg.Defaults),
		papermate.WithRunner(env.runner(out.verbose)),
		papermate.WithLogger(out.verbosef),
	)
}

// inspectManuscript reports the manuscript summary and warns about
// citations the bibliography does not define.
func inspectManuscript(files papermate.FileSet, out *console) error {
	source, err := os.ReadFile(files.Manuscript)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadManuscript, err)
	}
	summary := papermate.Inspect(source)

	title := summary.Title
	if title == "" {
		title = "untitled"
	}
	out.verbosef("manuscript: %s (%q, %d words, %d citations)",
		filepath.Base(files.Manuscript), title, summary.Words, len(summary.Citations))

	if len(summary.Citations) == 0 {
		return nil
	}
	bib, err := os.ReadFile(files.Bibliography)
	if err != nil {
		out.warnf("could not read %s to check citations: %v", filepath.Base(files.Bibliography), err)
		return nil
	}
	for _, key := range papermate.MissingCitations(summary.Citations, papermate.BibliographyKeys(bib)) {
		out.warnf("citation @%s not found in %s", key, filepath.Base(files.Bibliography))
	}
	return nil
}

// printResult reports outputs and cleanup problems. res may be nil.
func printResult(out *console, res *papermate.Result, elapsed time.Duration) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		out.warnf("%s", w)
	}
	for _, o := range res.Outputs {
		if out.verbose {
			out.infof("Created %s (%v)", o, elapsed.Round(time.Millisecond))
		} else {
			out.infof("Created %s", o)
		}
	}
}

// watch re-renders on input changes until ctx is canceled.
func watch(ctx context.Context, paper *papermate.Paper, req papermate.Request, s *settings, env *Environment, out *console) error {
	out.infof("Watching for changes (Ctrl+C to stop)")
	return paper.Watch(ctx, req, s.cfg.Watch.DebounceDuration(), func(res *papermate.Result, err error) {
		if err != nil {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
			return
		}
		if ierr := inspectManuscript(req.Files, out); ierr != nil {
			out.warnf("%v", ierr)
		}
		printResult(out, res, 0)
	})
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var de *papermate.DiscoveryError
	if errors.As(err, &de) {
		if errors.Is(err, papermate.ErrNoCandidate) {
			return hints.ForNoCandidate(de.Flag, de.Dir, de.Extension)
		}
		return hints.ForAmbiguousCandidate(de.Flag)
	}

	var te *papermate.ToolError
	if errors.As(err, &te) {
		if errors.Is(te, papermate.ErrToolNotFound) {
			return hints.ForToolNotFound(te.Tool)
		}
		switch te.Tool {
		case papermate.ToolGit:
			if tag := tagFromArgs(te.Args); tag != "" {
				return hints.ForTagRetrieval(tag)
			}
		case papermate.ToolLatex:
			return hints.ForLatexFailure()
		}
		return ""
	}

	if errors.Is(err, papermate.ErrToolFailed) {
		return hints.ForLatexFailure()
	}
	return ""
}

// tagFromArgs extracts the tag from "git cat-file -p <tag>:<path>" arguments.
func tagFromArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	tag, _, found := strings.Cut(args[len(args)-1], ":")
	if !found {
		return ""
	}
	return tag
}
