// Package conn owns the serial device handle and the connection state
// machine the status line and the ingestion worker observe.
package conn

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/rileyhilliard/obddash/internal/config"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
)

// DefaultReadTimeout bounds each blocking read on an opened handle.
const DefaultReadTimeout = time.Second

// Sentinels wrapped by every error Open returns.
var (
	ErrPortUnavailable  = stderrors.New("port unavailable")
	ErrPermissionDenied = stderrors.New("permission denied")
	ErrBadBaud          = stderrors.New("unsupported baud rate")
)

// Handle is an open device stream. Read must return (0, nil) when the read
// timeout elapses without data, and an error once the handle is closed.
type Handle interface {
	io.ReadCloser
	SetReadTimeout(t time.Duration) error
}

// Opener opens port at baud. Errors should wrap one of the package sentinels.
type Opener func(port string, baud int) (Handle, error)

// Manager holds at most one open Handle and tracks the connection State.
// Observers registered with OnStateChange run synchronously on the goroutine
// that caused the transition and must not call back into Open, Close or Fail.
type Manager struct {
	opMu sync.Mutex // serializes Open, Close and Fail

	opener      Opener
	readTimeout time.Duration
	log         logger.Logger

	machine *fsm.FSM
	handle  Handle

	stateMu   sync.RWMutex
	state     State
	observers []func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithReadTimeout overrides DefaultReadTimeout.
func WithReadTimeout(d time.Duration) Option {
	return func(m *Manager) { m.readTimeout = d }
}

// WithLogger sets the logger. Defaults to a "[conn]" env logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager returns a Disconnected manager that opens handles with opener.
func NewManager(opener Opener, opts ...Option) *Manager {
	m := &Manager{
		opener:      opener,
		readTimeout: DefaultReadTimeout,
		log:         logger.NewEnvLogger("[conn]"),
		state:       State{Kind: Disconnected},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.machine = newMachine(m.enter)
	return m
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// OnStateChange registers fn to be called after every transition.
func (m *Manager) OnStateChange(fn func(State)) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.observers = append(m.observers, fn)
}

// Open closes any held handle, then opens port at baud. On success the
// manager is Connected and holds the returned handle; on failure it is in
// Error and the returned error wraps ErrPortUnavailable, ErrPermissionDenied
// or ErrBadBaud.
func (m *Manager) Open(port string, baud int) (Handle, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.closeLocked()
	m.fire(eventOpen)

	if !config.ValidBaud(baud) {
		return nil, m.failOpen(port, fmt.Errorf("%w: %d", ErrBadBaud, baud),
			"Use one of 9600, 19200, 38400, 57600 or 115200")
	}
	if port == "" {
		return nil, m.failOpen(port, fmt.Errorf("%w: no port selected", ErrPortUnavailable),
			"Pick a port with --port or run 'obddash ports'")
	}

	h, err := m.opener(port, baud)
	if err != nil {
		return nil, m.failOpen(port, err, suggestionFor(err))
	}

	if err := h.SetReadTimeout(m.readTimeout); err != nil {
		_ = h.Close()
		return nil, m.failOpen(port, fmt.Errorf("%w: %v", ErrPortUnavailable, err),
			"The device rejected the read timeout; try another port")
	}

	m.handle = h
	m.fire(eventOpened)
	m.log.Info("connected to %s @ %d", port, baud)
	return h, nil
}

// Close releases the held handle, if any, and moves to Disconnected.
// Safe to call any number of times.
func (m *Manager) Close() {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.closeLocked()
}

// Fail reports a read failure on h. It only acts while h is still the held
// handle, so a late failure from a replaced worker is ignored. Reports
// whether the failure was applied.
func (m *Manager) Fail(h Handle, err error) bool {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if h == nil || m.handle != h {
		return false
	}

	_ = m.handle.Close()
	m.handle = nil

	msg := errors.ShortMessage(err)
	m.log.Warn("read failed: %s", msg)
	m.fire(eventFail, msg)
	return true
}

func (m *Manager) closeLocked() {
	if m.handle != nil {
		if err := m.handle.Close(); err != nil {
			m.log.Debug("close: %v", err)
		}
		m.handle = nil
		m.log.Info("disconnected")
	}
	if m.machine.Can(eventClose) {
		m.fire(eventClose)
	}
}

func (m *Manager) failOpen(port string, cause error, suggestion string) error {
	err := errors.WrapWithCode(cause, errors.ErrConn, "Couldn't open "+displayPort(port), suggestion)
	m.log.Warn("open %s failed: %v", displayPort(port), cause)
	m.fire(eventFail, cause.Error())
	return err
}

func (m *Manager) fire(event string, args ...interface{}) {
	err := m.machine.Event(context.Background(), event, args...)
	var noTransition fsm.NoTransitionError
	if err != nil && !stderrors.As(err, &noTransition) {
		// Only reachable through a programming error in the transition table.
		m.log.Error("state machine rejected %q in %s: %v", event, m.machine.Current(), err)
	}
}

// enter is the state machine's enter_state callback.
func (m *Manager) enter(dst string, args []interface{}) {
	next := State{Kind: kindOf(dst)}
	if next.Kind == Error && len(args) > 0 {
		if msg, ok := args[0].(string); ok {
			next.Message = msg
		}
	}

	m.stateMu.Lock()
	m.state = next
	observers := append([]func(State){}, m.observers...)
	m.stateMu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

func suggestionFor(err error) string {
	switch {
	case stderrors.Is(err, ErrPermissionDenied):
		return "Add your user to the dialout (Linux) or uucp group, or run with access to the device"
	case stderrors.Is(err, ErrBadBaud):
		return "Use one of 9600, 19200, 38400, 57600 or 115200"
	default:
		return "Check the adapter is plugged in and not used by another program; 'obddash ports' lists what's available"
	}
}

func displayPort(port string) string {
	if port == "" {
		return "serial port"
	}
	return port
}
