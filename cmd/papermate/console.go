package main

import "fmt"

// console writes user-facing messages according to --quiet and --verbose.
// Results go to stdout; warnings and progress go to stderr.
type console struct {
	env     *Environment
	quiet   bool
	verbose bool
}

func newConsole(env *Environment, f commonFlags) *console {
	return &console{
		env:     env,
		quiet:   f.quiet,
		verbose: f.verbose && !f.quiet,
	}
}

// infof prints a result line unless quiet.
func (c *console) infof(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.env.Stdout, format+"\n", args...)
}

// verbosef prints progress details in verbose mode.
func (c *console) verbosef(format string, args ...any) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(c.env.Stderr, format+"\n", args...)
}

// warnf prints a warning unless quiet.
func (c *console) warnf(format string, args ...any) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.env.Stderr, "warning: "+format+"\n", args...)
}
