package main

// Notes:
// - notifyContext: we only test the observable behavior (context creation,
//   cancellation via stop(), and parent context propagation). We do not test
//   actual OS signal delivery since it's non-deterministic and requires
//   platform-specific setup.
// - watchInterrupts: signals are fed through a plain channel, and exit is a
//   recording func, so the double-interrupt path runs without a real signal.
// - Killing the tool's process group on cancel is covered by the runner tests
//   in the root package.

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestNotifyContext - Context creation and cancellation behavior
// ---------------------------------------------------------------------------

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("context starts not cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		defer stop()

		select {
		case <-ctx.Done():
			t.Fatal("context should not be cancelled initially")
		default:
		}
	})

	t.Run("stop function cancels context", func(t *testing.T) {
		t.Parallel()

		ctx, stop := notifyContext(context.Background())
		stop()
		stop() // idempotent

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be cancelled after stop()")
		}
	})

	t.Run("inherits parent cancellation", func(t *testing.T) {
		t.Parallel()

		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()

		select {
		case <-ctx.Done():
		default:
			t.Fatal("context should be cancelled when parent is cancelled")
		}
	})
}

// ---------------------------------------------------------------------------
// TestWatchInterrupts - First signal cancels, second exits
// ---------------------------------------------------------------------------

type exitRecorder struct {
	mu    sync.Mutex
	codes []int
	done  chan struct{}
}

func newExitRecorder() *exitRecorder {
	return &exitRecorder{done: make(chan struct{}, 1)}
}

func (r *exitRecorder) exit(code int) {
	r.mu.Lock()
	r.codes = append(r.codes, code)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func TestWatchInterrupts(t *testing.T) {
	t.Parallel()

	t.Run("first signal cancels", func(t *testing.T) {
		t.Parallel()

		sigs := make(chan os.Signal, 2)
		rec := newExitRecorder()
		ctx, stop := watchInterrupts(context.Background(), sigs, &bytes.Buffer{}, rec.exit)
		defer stop()

		sigs <- os.Interrupt

		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("context not cancelled after first signal")
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		if len(rec.codes) != 0 {
			t.Errorf("exit called with %v after one signal", rec.codes)
		}
	})

	t.Run("second signal exits", func(t *testing.T) {
		t.Parallel()

		sigs := make(chan os.Signal, 2)
		rec := newExitRecorder()
		var w syncBuffer
		_, stop := watchInterrupts(context.Background(), sigs, &w, rec.exit)
		defer stop()

		sigs <- os.Interrupt
		sigs <- os.Interrupt

		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("exit not called after second signal")
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		if len(rec.codes) != 1 || rec.codes[0] != ExitGeneral {
			t.Errorf("exit codes = %v, want [%d]", rec.codes, ExitGeneral)
		}
		if !strings.Contains(w.String(), "received again") {
			t.Errorf("output = %q", w.String())
		}
	})

	t.Run("stop without signal", func(t *testing.T) {
		t.Parallel()

		sigs := make(chan os.Signal, 2)
		rec := newExitRecorder()
		ctx, stop := watchInterrupts(context.Background(), sigs, &bytes.Buffer{}, rec.exit)
		stop()
		time.Sleep(20 * time.Millisecond)

		if ctx.Err() == nil {
			t.Error("context should be cancelled by stop()")
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		if len(rec.codes) != 0 {
			t.Errorf("exit called with %v after stop", rec.codes)
		}
	})
}

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
