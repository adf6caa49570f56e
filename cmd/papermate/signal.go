package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
)

// notifyContext returns a context that is canceled on the first interrupt.
// Canceling it kills a running tool's process group and lets the run remove
// its intermediates. A second interrupt during that cleanup exits at once.
// Call stop() to release resources.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, interruptSignals...)
	ctx, stop := watchInterrupts(parent, ch, os.Stderr, os.Exit)
	return ctx, func() {
		signal.Stop(ch)
		stop()
	}
}

// watchInterrupts cancels the returned context on the first value received
// from sigs and calls exit on the second.
func watchInterrupts(parent context.Context, sigs <-chan os.Signal, w io.Writer, exit func(int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		select {
		case <-sigs:
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigs:
			fmt.Fprintf(w, "\n%s received again, exiting without cleanup\n", sig)
			exit(ExitGeneral)
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(done)
			cancel()
		})
	}
}
