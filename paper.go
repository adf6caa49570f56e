package papermate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-papermate/internal/fileutil"
)

// DefaultDefaultsFile is the pandoc defaults file passed to every conversion.
const DefaultDefaultsFile = "header.yaml"

// Compile-time interface implementation check.
var _ CommandRunner = (*ExecRunner)(nil)

// Paper runs the render and diff pipeline in one working directory.
// Create with New. A Paper holds no per-run state, but runs sharing a
// working directory must not overlap: intermediate file names are fixed.
type Paper struct {
	workDir  string
	defaults string
	tools    Tools
	runner   CommandRunner
	logf     func(format string, args ...any)
}

// Option configures a Paper.
type Option func(*Paper)

// WithTools sets the collaborator binaries. Empty fields keep their default.
func WithTools(t Tools) Option {
	return func(p *Paper) {
		p.tools = t.withDefaults()
	}
}

// WithDefaults sets the pandoc defaults file, relative to the working
// directory. An empty path omits --defaults.
func WithDefaults(path string) Option {
	return func(p *Paper) {
		p.defaults = path
	}
}

// WithRunner replaces the command runner.
func WithRunner(r CommandRunner) Option {
	if r == nil {
		panic("papermate: WithRunner runner must not be nil")
	}
	return func(p *Paper) {
		p.runner = r
	}
}

// WithLogger receives one line per pipeline step (commands, timings, cleanup).
func WithLogger(logf func(format string, args ...any)) Option {
	return func(p *Paper) {
		if logf != nil {
			p.logf = logf
		}
	}
}

// New creates a Paper working in workDir with default tools, the
// header.yaml defaults file, and an ExecRunner.
func New(workDir string, opts ...Option) *Paper {
	p := &Paper{
		workDir:  workDir,
		defaults: DefaultDefaultsFile,
		tools:    DefaultTools(),
		runner:   &ExecRunner{},
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WorkDir returns the directory outputs are written to.
func (p *Paper) WorkDir() string { return p.workDir }

// Make renders the request. With no tags it renders the working copy;
// otherwise it renders each tagged snapshot and, for two tags, the diff.
//
// External failures are returned immediately without retry. In tagged mode
// the intermediates are cleaned up before Make returns, whether or not a
// step failed; the Result is non-nil in that case and lists what cleanup did.
func (p *Paper) Make(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Tags.Current() {
		out, err := p.render(ctx, req.Files.Manuscript, fileutil.Stem(req.Files.Manuscript), req.Format, req.Files)
		if err != nil {
			return nil, err
		}
		return &Result{Outputs: []string{out}}, nil
	}

	if err := p.checkTagCollisions(req); err != nil {
		return nil, err
	}
	return p.makeTagged(ctx, req)
}

// makeTagged runs the tagged pipeline; cleanup runs on every exit path.
func (p *Paper) makeTagged(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}
	defer p.cleanup(req.Tags, res)

	for _, tag := range req.Tags {
		if err := p.retrieve(ctx, tag, req.Files.Manuscript); err != nil {
			return res, err
		}
	}

	format := req.RenderFormat()
	for _, tag := range req.Tags {
		out, err := p.render(ctx, p.path(tag+".md"), tag, format, req.Files)
		if err != nil {
			return res, err
		}
		if !req.Tags.Diffable() {
			res.Outputs = append(res.Outputs, out)
		}
	}

	if !req.Tags.Diffable() {
		return res, nil
	}

	pdf, err := p.diff(ctx, req.Tags)
	if err != nil {
		return res, err
	}
	res.Outputs = append(res.Outputs, pdf)
	return res, nil
}

// render runs the converter on source and returns the output name
// "<stem>.<format>", relative to the working directory.
func (p *Paper) render(ctx context.Context, source, stem string, format Format, files FileSet) (string, error) {
	output := stem + "." + string(format)

	args := []string{p.rel(source)}
	if p.defaults != "" {
		args = append(args, "--defaults="+p.defaults)
	}
	args = append(args,
		"--csl="+p.rel(files.CSL),
		"--bibliography="+p.rel(files.Bibliography),
		"-o", output,
	)

	if err := p.run(ctx, Command{Tool: ToolPandoc, Path: p.tools.Pandoc, Args: args}); err != nil {
		return "", fmt.Errorf("rendering %s: %w", output, err)
	}
	return output, nil
}

// run executes c in the working directory and logs it with its duration.
func (p *Paper) run(ctx context.Context, c Command) error {
	c.Dir = p.workDir
	p.logf("$ %s %s", c.Path, strings.Join(c.Args, " "))
	start := time.Now()
	err := p.runner.Run(ctx, c)
	p.logf("  %s finished in %v", c.Tool, time.Since(start).Round(time.Millisecond))
	return err
}

// checkTagCollisions refuses tags whose intermediates would overwrite or
// sweep away the manuscript itself, e.g. "<tag>.md" or "<tag1>_<tag2>_diff.md".
func (p *Paper) checkTagCollisions(req Request) error {
	manuscript, err := filepath.Abs(req.Files.Manuscript)
	if err != nil {
		return nil
	}
	for _, name := range cleanupTargets(req.Tags) {
		target, err := filepath.Abs(p.path(name))
		if err != nil {
			continue
		}
		if sameFile(target, manuscript) {
			return fmt.Errorf("%w: tags %s would remove the manuscript %s", ErrInvalidTag, strings.Join(req.Tags, " "), p.rel(req.Files.Manuscript))
		}
	}
	return nil
}

// path joins name onto the working directory.
func (p *Paper) path(name string) string {
	return filepath.Join(p.workDir, name)
}

// rel rewrites path, given relative to the process directory, relative to
// the working directory when it lies inside it. Paths outside are made
// absolute. Tools run with the working directory as process directory.
func (p *Paper) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	base, err := filepath.Abs(p.workDir)
	if err != nil {
		return abs
	}
	r, err := filepath.Rel(base, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return abs
	}
	if strings.HasPrefix(r, "-") {
		// Would be parsed as an option.
		return "." + string(filepath.Separator) + r
	}
	return r
}

func sameFile(a, b string) bool {
	if a == b {
		return true
	}
	ia, errA := os.Stat(a)
	ib, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
