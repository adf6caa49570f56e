package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: papermate [flags] [--tags TAG [TAG]]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a paper written in Markdown to PDF, DOCX or TeX with pandoc.")
	fmt.Fprintln(w, "With two git tags, render both versions and typeset their differences")
	fmt.Fprintln(w, "to <tag1>_<tag2>_diff.pdf with latexdiff and xelatex.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Inputs (discovered when omitted):")
	fmt.Fprintln(w, "      --input <path>        Markdown manuscript (the only *.md in the working directory)")
	fmt.Fprintln(w, "      --csl <path>          Citation style (the only *.csl in the bib directory)")
	fmt.Fprintln(w, "      --bib <path>          BibTeX references (the only *.bib in the bib directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -t, --tex                 Output TeX instead of PDF (wins over --docx)")
	fmt.Fprintln(w, "  -d, --docx                Output DOCX instead of PDF")
	fmt.Fprintln(w, "      --tags <tag> [<tag>]  Render tagged versions; two tags produce a diff PDF")
	fmt.Fprintln(w, "                            (older tag first, no arguments before --tags)")
	fmt.Fprintln(w, "      --watch               Re-render the working copy when an input changes")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Setup:")
	fmt.Fprintln(w, "      --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --workdir <dir>       Working directory (default: .)")
	fmt.Fprintln(w, "      --check               Check tools and inputs, then exit")
	fmt.Fprintln(w, "      --json                With --check, print the report as JSON")
	fmt.Fprintln(w, "      --completion <shell>  Print a completion script (bash, zsh, fish, powershell)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show commands, timing and tool output")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tagging versions:")
	fmt.Fprintln(w, "  Tag the current version in git:")
	fmt.Fprintln(w, "    $ git tag -a v1 -m 'First draft'")
	fmt.Fprintln(w, "  Tag an earlier version by its commit checksum (or its first characters):")
	fmt.Fprintln(w, "    $ git tag -a v2 <commit checksum>")
	fmt.Fprintln(w, "  List commits with their checksums:")
	fmt.Fprintln(w, "    $ git log --pretty=oneline")
	fmt.Fprintln(w, "  Then compare them:")
	fmt.Fprintln(w, "    $ papermate --tags v1 v2")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Shell completion:")
	fmt.Fprintln(w, "  Bash (~/.bashrc):         eval \"$(papermate --completion bash)\"")
	fmt.Fprintln(w, "  Zsh (~/.zshrc):           eval \"$(papermate --completion zsh)\"")
	fmt.Fprintln(w, "  Fish:                     papermate --completion fish > ~/.config/fish/completions/papermate.fish")
	fmt.Fprintln(w, "  PowerShell ($PROFILE):    papermate --completion powershell | Out-String | Invoke-Expression")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PAPERMATE_CONFIG, PAPERMATE_BIB_DIR, PAPERMATE_DEFAULTS,")
	fmt.Fprintln(w, "  PAPERMATE_PANDOC, PAPERMATE_GIT, PAPERMATE_LATEXDIFF, PAPERMATE_LATEX")
}
