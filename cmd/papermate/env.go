package main

import (
	"io"
	"os"
	"time"

	papermate "github.com/alnah/go-papermate"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Runner papermate.CommandRunner // nil runs the real tools
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// runner returns the injected runner, or an ExecRunner that echoes tool
// output to stderr when verbose.
func (e *Environment) runner(verbose bool) papermate.CommandRunner {
	if e.Runner != nil {
		return e.Runner
	}
	r := &papermate.ExecRunner{}
	if verbose {
		r.Echo = e.Stderr
	}
	return r
}
