//go:build windows

package main

import "os"

// syscall.SIGTERM is not delivered on Windows.
var interruptSignals = []os.Signal{os.Interrupt}
