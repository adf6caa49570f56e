package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
	flagTag  // git tag of the working directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --input
	Short    string   // -t (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma separated
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
	IsTag    bool     // git tag completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"completion": {Values: []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}},

	"input":  {FileGlob: "*.md"},
	"csl":    {FileGlob: "*.csl"},
	"bib":    {FileGlob: "*.bib"},
	"config": {FileGlob: "*.yaml,*.yml"},

	"workdir": {IsDir: true},

	"tags": {IsTag: true},
}

// extractFlags extracts flag definitions from a pflag.FlagSet, enriched
// with flagCompletionMeta.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsDir:
				fd.Type = flagDir
			case meta.IsTag:
				fd.Type = flagTag
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// completionFlags returns the flags parseFlags accepts, in FlagSet order.
func completionFlags() []flagDef {
	return extractFlags(newFlagSet(&cliFlags{}))
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	flags := completionFlags()

	var b strings.Builder
	switch shell {
	case ShellBash:
		writeBash(&b, flags)
	case ShellZsh:
		writeZsh(&b, flags)
	case ShellFish:
		writeFish(&b, flags)
	case ShellPowerShell:
		writePowerShell(&b, flags)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// runCompletion handles --completion.
func runCompletion(shell string, env *Environment) error {
	return GenerateCompletion(env.Stdout, Shell(shell))
}

// globs splits a comma separated FileGlob.
func globs(fd flagDef) []string {
	return strings.Split(fd.FileGlob, ",")
}

// names returns the spellings of a flag, long first.
func (fd flagDef) names() []string {
	if fd.Short == "" {
		return []string{"--" + fd.Long}
	}
	return []string{"--" + fd.Long, "-" + fd.Short}
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func writeBash(b *strings.Builder, flags []flagDef) {
	var words []string
	for _, fd := range flags {
		words = append(words, fd.names()...)
	}

	b.WriteString("# bash completion for papermate\n")
	b.WriteString("_papermate_completions() {\n")
	b.WriteString("    local cur prev w\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	b.WriteString("    case \"$prev\" in\n")
	for _, fd := range flags {
		if fd.Type == flagBool {
			continue
		}
		fmt.Fprintf(b, "        %s)\n", strings.Join(fd.names(), "|"))
		switch fd.Type {
		case flagEnum:
			fmt.Fprintf(b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(fd.Values, " "))
		case flagFile:
			b.WriteString("            COMPREPLY=(")
			for _, g := range globs(fd) {
				fmt.Fprintf(b, "$(compgen -f -X '!%s' -- \"$cur\") ", g)
			}
			b.WriteString("$(compgen -d -- \"$cur\"))\n")
		case flagDir:
			b.WriteString("            COMPREPLY=($(compgen -d -- \"$cur\"))\n")
		case flagTag:
			b.WriteString("            COMPREPLY=($(compgen -W \"$(git tag 2>/dev/null)\" -- \"$cur\"))\n")
		default:
			b.WriteString("            COMPREPLY=()\n")
		}
		b.WriteString("            return\n")
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n\n")
	b.WriteString("    if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(b, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(words, " "))
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    # Tags may follow --tags as separate words.\n")
	b.WriteString("    for w in \"${COMP_WORDS[@]:1:COMP_CWORD-1}\"; do\n")
	b.WriteString("        if [[ \"$w\" == --tags || \"$w\" == --tags=* ]]; then\n")
	b.WriteString("            COMPREPLY=($(compgen -W \"$(git tag 2>/dev/null)\" -- \"$cur\"))\n")
	b.WriteString("            return\n")
	b.WriteString("        fi\n")
	b.WriteString("    done\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _papermate_completions papermate\n")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

// zshEscape escapes text for use inside a single-quoted _arguments spec.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", `\[`, "]", `\]`, ":", `\:`)
	return r.Replace(s)
}

func writeZsh(b *strings.Builder, flags []flagDef) {
	b.WriteString("#compdef papermate\n\n")
	b.WriteString("__papermate_git_tags() {\n")
	b.WriteString("    local -a tags\n")
	b.WriteString("    tags=(${(f)\"$(git tag 2>/dev/null)\"})\n")
	b.WriteString("    _describe 'git tag' tags\n")
	b.WriteString("}\n\n")
	b.WriteString("_papermate() {\n")
	b.WriteString("    _arguments -s \\\n")

	for _, fd := range flags {
		desc := zshEscape(fd.Desc)

		action := ""
		switch fd.Type {
		case flagBool:
		case flagEnum:
			action = ":" + fd.Long + ":(" + strings.Join(fd.Values, " ") + ")"
		case flagFile:
			action = ":file:_files -g \"" + strings.Join(globs(fd), " ") + "\""
		case flagDir:
			action = ":directory:_files -/"
		case flagTag:
			action = ":tag:__papermate_git_tags"
		default:
			action = ":" + fd.Long + ": "
		}

		long := "--" + fd.Long
		if fd.Type != flagBool {
			long += "="
		}
		if fd.Short == "" {
			fmt.Fprintf(b, "        '%s[%s]%s' \\\n", long, desc, action)
			continue
		}
		fmt.Fprintf(b, "        '(-%s --%s)'{-%s,%s}'[%s]%s' \\\n", fd.Short, fd.Long, fd.Short, long, desc, action)
	}

	b.WriteString("        '*::tag:__papermate_git_tags'\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _papermate papermate\n")
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

// fishEscape escapes text for use inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

func writeFish(b *strings.Builder, flags []flagDef) {
	b.WriteString("# fish completion for papermate\n\n")
	b.WriteString("function __fish_papermate_git_tags\n")
	b.WriteString("    git tag 2>/dev/null\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_papermate_after_tags\n")
	b.WriteString("    for w in (commandline -opc)\n")
	b.WriteString("        string match -q -- '--tags*' $w; and return 0\n")
	b.WriteString("    end\n")
	b.WriteString("    return 1\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c papermate -f\n")
	b.WriteString("complete -c papermate -n __fish_papermate_after_tags -a '(__fish_papermate_git_tags)'\n")

	for _, fd := range flags {
		line := "complete -c papermate"
		if fd.Short != "" {
			line += " -s " + fd.Short
		}
		line += " -l " + fd.Long

		switch fd.Type {
		case flagBool:
		case flagEnum:
			line += " -x -a '" + strings.Join(fd.Values, " ") + "'"
		case flagFile:
			var suffixes []string
			for _, g := range globs(fd) {
				suffixes = append(suffixes, "(__fish_complete_suffix "+strings.TrimPrefix(g, "*")+")")
			}
			line += " -r -k -a '" + strings.Join(suffixes, " ") + "'"
		case flagDir:
			line += " -x -a '(__fish_complete_directories)'"
		case flagTag:
			line += " -x -a '(__fish_papermate_git_tags)'"
		default:
			line += " -r"
		}

		line += " -d '" + fishEscape(fd.Desc) + "'"
		b.WriteString(line + "\n")
	}
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

// psEscape escapes text for use inside a single-quoted PowerShell string.
func psEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func writePowerShell(b *strings.Builder, flags []flagDef) {
	b.WriteString("# PowerShell completion for papermate\n")
	b.WriteString("Register-ArgumentCompleter -Native -CommandName papermate -ScriptBlock {\n")
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")
	b.WriteString("    $words = @($commandAst.CommandElements | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    $prev = if ($wordToComplete) { $words[-2] } else { $words[-1] }\n\n")
	b.WriteString("    function Complete-Value($values) {\n")
	b.WriteString("        $values | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n\n")
	b.WriteString("    switch ($prev) {\n")

	for _, fd := range flags {
		if fd.Type == flagBool {
			continue
		}
		var values string
		switch fd.Type {
		case flagEnum:
			quoted := make([]string, len(fd.Values))
			for i, v := range fd.Values {
				quoted[i] = "'" + v + "'"
			}
			values = strings.Join(quoted, ", ")
		case flagFile:
			var conds []string
			for _, g := range globs(fd) {
				conds = append(conds, "$_ -like '"+g+"'")
			}
			values = "Get-ChildItem -File -Name | Where-Object { " + strings.Join(conds, " -or ") + " }"
		case flagDir:
			values = "Get-ChildItem -Directory -Name"
		case flagTag:
			values = "git tag 2>$null"
		default:
			values = "@()"
		}
		for _, name := range fd.names() {
			fmt.Fprintf(b, "        '%s' { return Complete-Value (%s) }\n", name, values)
		}
	}

	b.WriteString("    }\n\n")
	b.WriteString("    if ($words -contains '--tags' -and $wordToComplete -notlike '-*') {\n")
	b.WriteString("        return Complete-Value (git tag 2>$null)\n")
	b.WriteString("    }\n\n")
	b.WriteString("    $flags = @(\n")
	for _, fd := range flags {
		for _, name := range fd.names() {
			fmt.Fprintf(b, "        @{ Name = '%s'; Desc = '%s' }\n", name, psEscape(fd.Desc))
		}
	}
	b.WriteString("    )\n")
	b.WriteString("    $flags | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Desc)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}
