package ingest

import (
	"sync"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/telemetry"
)

// Link ties a conn.Manager to at most one running Worker. Connect and
// Disconnect block until the previous worker has fully exited, which takes
// at most one read timeout, so callers on a UI thread should run them in
// the background.
type Link struct {
	mu     sync.Mutex
	mgr    *conn.Manager
	state  *telemetry.State
	rec    Recorder
	log    logger.Logger
	worker *Worker
}

// LinkOption configures a Link.
type LinkOption func(*Link)

// WithRecorder attaches a Recorder to every worker the link starts.
func WithRecorder(r Recorder) LinkOption {
	return func(l *Link) { l.rec = r }
}

// WithLogger sets the logger used by the link and its workers.
func WithLogger(log logger.Logger) LinkOption {
	return func(l *Link) { l.log = log }
}

// NewLink publishes samples from connections opened through mgr into state.
func NewLink(mgr *conn.Manager, state *telemetry.State, opts ...LinkOption) *Link {
	l := &Link{
		mgr:   mgr,
		state: state,
		rec:   nopRecorder{},
		log:   logger.NewEnvLogger("[ingest]"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Connect stops any running worker, waits for it to exit, opens port at baud
// and starts a new worker on the handle. Open errors are returned as-is.
func (l *Link) Connect(port string, baud int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()

	h, err := l.mgr.Open(port, baud)
	if err != nil {
		return err
	}

	w := NewWorker(h, l.state, l.mgr.Fail, l.rec, l.log)
	w.Start()
	l.worker = w
	return nil
}

// Disconnect stops the worker, closes the handle and waits for the worker to
// exit. Safe to call when nothing is connected.
func (l *Link) Disconnect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Active reports whether a worker is currently reading.
func (l *Link) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.worker != nil && l.worker.Running()
}

func (l *Link) stopLocked() {
	w := l.worker
	l.worker = nil

	if w != nil {
		w.Stop()
	}
	// Closing the handle unblocks a read in progress.
	l.mgr.Close()
	if w != nil {
		<-w.Done()
	}
}
