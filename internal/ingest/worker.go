// Package ingest runs the background read loop that turns the device byte
// stream into published telemetry samples.
package ingest

import (
	"bytes"
	"strings"
	"sync/atomic"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// MaxLineLength caps the bytes buffered while waiting for a newline. A line
// that grows past it is dropped up to and including its newline.
const MaxLineLength = 1024

const readBufferSize = 256

// Recorder observes what the worker does with each line. All methods are
// called from the worker goroutine.
type Recorder interface {
	LineParsed()
	LineDropped()
	ReadFailed()
}

type nopRecorder struct{}

func (nopRecorder) LineParsed()  {}
func (nopRecorder) LineDropped() {}
func (nopRecorder) ReadFailed()  {}

// FailFunc is told about a read error while the worker was running.
// conn.Manager.Fail satisfies it.
type FailFunc func(h conn.Handle, err error) bool

// Worker reads lines from one handle and publishes every valid sample.
// A Worker runs once; start a new one for a new connection.
type Worker struct {
	handle conn.Handle
	state  *telemetry.State
	fail   FailFunc
	rec    Recorder
	log    logger.Logger

	running atomic.Bool
	started atomic.Bool
	done    chan struct{}

	pending    []byte
	discarding bool
}

// NewWorker prepares a worker for h. Call Start to begin reading.
func NewWorker(h conn.Handle, state *telemetry.State, fail FailFunc, rec Recorder, log logger.Logger) *Worker {
	if rec == nil {
		rec = nopRecorder{}
	}
	if log == nil {
		log = logger.Noop()
	}
	if fail == nil {
		fail = func(conn.Handle, error) bool { return false }
	}
	return &Worker{
		handle:  h,
		state:   state,
		fail:    fail,
		rec:     rec,
		log:     log,
		done:    make(chan struct{}),
		pending: make([]byte, 0, readBufferSize),
	}
}

// Start launches the read loop. Calling it more than once has no effect.
func (w *Worker) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	w.running.Store(true)
	go w.run()
}

// Stop asks the loop to exit. The loop notices at the next read timeout, or
// immediately once the handle is closed. Stop does not wait; use Done.
func (w *Worker) Stop() {
	w.running.Store(false)
}

// Running reports whether the loop has been started and not yet asked to stop
// or failed.
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Done is closed when the loop has exited. For a worker that was never
// started it is never closed.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) run() {
	defer close(w.done)
	w.log.Debug("worker started")

	buf := make([]byte, readBufferSize)
	for w.running.Load() {
		n, err := w.handle.Read(buf)
		if n > 0 {
			w.consume(buf[:n])
		}
		if err == nil {
			continue
		}

		// A read error after Stop is the handle being closed under us.
		if !w.running.Load() {
			break
		}
		w.running.Store(false)
		w.rec.ReadFailed()
		w.log.Warn("read error: %v", err)
		w.fail(w.handle, err)
		break
	}

	w.log.Debug("worker stopped")
}

// consume splits p into newline-terminated lines, keeping any trailing
// partial line for the next read.
func (w *Worker) consume(p []byte) {
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			w.buffer(p)
			return
		}

		if w.discarding {
			w.discarding = false
		} else if len(w.pending)+i > MaxLineLength {
			w.drop("line too long")
		} else {
			w.pending = append(w.pending, p[:i]...)
			w.handleLine(w.pending)
		}
		w.pending = w.pending[:0]
		p = p[i+1:]
	}
}

func (w *Worker) buffer(p []byte) {
	if w.discarding {
		return
	}
	if len(w.pending)+len(p) > MaxLineLength {
		w.pending = w.pending[:0]
		w.discarding = true
		w.drop("line too long")
		return
	}
	w.pending = append(w.pending, p...)
}

func (w *Worker) handleLine(raw []byte) {
	line := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	if line == "" {
		return
	}

	sample, err := telemetry.ParseLine(line)
	if err != nil {
		w.drop(line)
		return
	}

	w.state.Set(sample)
	w.rec.LineParsed()
}

func (w *Worker) drop(what string) {
	w.rec.LineDropped()
	w.log.Debug("dropped %q", what)
}
