// Package papermate renders a Markdown manuscript to PDF, DOCX or TeX with
// pandoc, and typesets the differences between two git-tagged versions of
// the manuscript with latexdiff.
//
// # Quick Start
//
// Resolve the input files, then render:
//
//	files, err := papermate.ResolveFiles(".", "bib", papermate.FileArgs{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	paper := papermate.New(".")
//	result, err := paper.Make(ctx, papermate.Request{
//	    Files:  files,
//	    Format: papermate.FormatPDF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Outputs) // [paper.pdf]
//
// # Modes
//
// The number of tags in a Request selects the mode:
//
//  1. No tags: the working copy of the manuscript is rendered to
//     <stem>.<format>, where stem is the manuscript name without extension.
//  2. One tag: the manuscript as committed at that tag is retrieved with
//     git and rendered to <tag>.<format>.
//  3. Two tags: both versions are rendered to TeX, latexdiff marks up the
//     changes in <tag1>_<tag2>_diff.tex, and the TeX engine typesets it to
//     <tag1>_<tag2>_diff.pdf. Intermediate .md, .tex, .aux and .log files
//     are removed afterwards, even when a step failed.
//
// # External Tools
//
// Every tool is run with an explicit argument list (never through a shell)
// with the working directory as process directory. Failures are returned as
// *ToolError, which matches ErrToolFailed or ErrToolNotFound with errors.Is
// and carries the tool's exit code and stderr.
//
// Binary names are set with WithTools; the CommandRunner is replaceable
// with WithRunner, which is how the tests drive the pipeline without
// pandoc or TeX installed.
package papermate
