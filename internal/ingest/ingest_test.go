package ingest

import (
	stderrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/logger"
	"github.com/rileyhilliard/obddash/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPortClosed = stderrors.New("port closed")

// scriptHandle is a conn.Handle fed from a test. Read waits up to the read
// timeout for a chunk or a scripted error and returns (0, nil) on timeout.
type scriptHandle struct {
	chunks chan []byte
	errs   chan error

	closeOnce sync.Once
	closed    chan struct{}

	timeout  atomic.Int64
	inFlight atomic.Int32
}

func newScriptHandle() *scriptHandle {
	h := &scriptHandle{
		chunks: make(chan []byte, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
	h.timeout.Store(int64(20 * time.Millisecond))
	return h
}

func (h *scriptHandle) Read(p []byte) (int, error) {
	h.inFlight.Add(1)
	defer h.inFlight.Add(-1)

	select {
	case <-h.closed:
		return 0, errPortClosed
	default:
	}

	select {
	case c := <-h.chunks:
		return copy(p, c), nil
	case err := <-h.errs:
		return 0, err
	case <-h.closed:
		return 0, errPortClosed
	case <-time.After(time.Duration(h.timeout.Load())):
		return 0, nil
	}
}

func (h *scriptHandle) Close() error {
	h.closeOnce.Do(func() { close(h.closed) })
	return nil
}

func (h *scriptHandle) SetReadTimeout(t time.Duration) error {
	h.timeout.Store(int64(t))
	return nil
}

func (h *scriptHandle) isClosed() bool {
	select {
	case <-h.closed:
		return true
	default:
		return false
	}
}

// countingRecorder counts Recorder calls.
type countingRecorder struct {
	parsed, dropped, failed atomic.Int32
}

func (r *countingRecorder) LineParsed()  { r.parsed.Add(1) }
func (r *countingRecorder) LineDropped() { r.dropped.Add(1) }
func (r *countingRecorder) ReadFailed()  { r.failed.Add(1) }

func newTestWorker(state *telemetry.State, rec Recorder) *Worker {
	return NewWorker(newScriptHandle(), state, nil, rec, logger.Noop())
}

func TestWorker_ParsesCompleteLine(t *testing.T) {
	state := telemetry.NewState()
	w := newTestWorker(state, nil)

	w.consume([]byte("120,3500,45.0,88\n"))

	assert.Equal(t, telemetry.Sample{Speed: 120, RPM: 3500, Load: 45.0, Temp: 88}, state.Get())
}

func TestWorker_MalformedLinesLeaveStateUnchanged(t *testing.T) {
	prior := telemetry.Sample{Speed: 60, RPM: 2000, Load: 30, Temp: 85}
	lines := []string{
		"120,3500,45.0\n",
		"120,3500,45.0,88,9\n",
		"a,b,c,d\n",
		"120,3500,,88\n",
		"NaN,1,2,3\n",
		"\n",
		"   \r\n",
	}

	for _, line := range lines {
		t.Run(strings.TrimSpace(line), func(t *testing.T) {
			state := telemetry.NewState()
			state.Set(prior)
			w := newTestWorker(state, nil)

			w.consume([]byte(line))

			assert.Equal(t, prior, state.Get())
		})
	}
}

func TestWorker_AssemblesAcrossReads(t *testing.T) {
	state := telemetry.NewState()
	w := newTestWorker(state, nil)

	w.consume([]byte("120,35"))
	assert.Equal(t, telemetry.Sample{}, state.Get(), "partial line is not published")

	w.consume([]byte("00,45.0,88\r\n60,1800,"))
	assert.Equal(t, telemetry.Sample{Speed: 120, RPM: 3500, Load: 45, Temp: 88}, state.Get())

	w.consume([]byte("20.5,90\n"))
	assert.Equal(t, telemetry.Sample{Speed: 60, RPM: 1800, Load: 20.5, Temp: 90}, state.Get())
}

func TestWorker_MultipleLinesInOneRead(t *testing.T) {
	state := telemetry.NewState()
	rec := &countingRecorder{}
	w := newTestWorker(state, rec)

	w.consume([]byte("1,2,3,4\nbad\n5,6,7,8\n"))

	assert.Equal(t, telemetry.Sample{Speed: 5, RPM: 6, Load: 7, Temp: 8}, state.Get(), "last valid line wins")
	assert.Equal(t, int32(2), rec.parsed.Load())
	assert.Equal(t, int32(1), rec.dropped.Load())
}

func TestWorker_DropsInvalidUTF8Bytes(t *testing.T) {
	state := telemetry.NewState()
	w := newTestWorker(state, nil)

	w.consume([]byte("12\xff0,3500,45,88\n"))

	assert.Equal(t, telemetry.Sample{Speed: 120, RPM: 3500, Load: 45, Temp: 88}, state.Get())
}

func TestWorker_OverlongLineDiscarded(t *testing.T) {
	state := telemetry.NewState()
	rec := &countingRecorder{}
	w := newTestWorker(state, rec)

	junk := strings.Repeat("9", MaxLineLength+10)
	w.consume([]byte(junk[:MaxLineLength/2]))
	w.consume([]byte(junk[MaxLineLength/2:]))
	w.consume([]byte(",1,2,3\n7,8,9,10\n"))

	assert.Equal(t, telemetry.Sample{Speed: 7, RPM: 8, Load: 9, Temp: 10}, state.Get())
	assert.Equal(t, int32(1), rec.dropped.Load(), "the overlong line counts once")
	assert.Equal(t, int32(1), rec.parsed.Load())
	assert.LessOrEqual(t, cap(w.pending), 2*MaxLineLength)
}

func TestWorker_OverlongLineInSingleRead(t *testing.T) {
	state := telemetry.NewState()
	rec := &countingRecorder{}
	w := newTestWorker(state, rec)

	w.consume([]byte(strings.Repeat("1", MaxLineLength+1) + "\n1,2,3,4\n"))

	assert.Equal(t, telemetry.Sample{Speed: 1, RPM: 2, Load: 3, Temp: 4}, state.Get())
	assert.Equal(t, int32(1), rec.dropped.Load())
}

func TestWorker_StopExitsWithinTimeout(t *testing.T) {
	h := newScriptHandle()
	failed := atomic.Bool{}
	w := NewWorker(h, telemetry.NewState(), func(conn.Handle, error) bool {
		failed.Store(true)
		return true
	}, nil, logger.Noop())

	w.Start()
	assert.True(t, w.Running())

	w.Stop()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after Stop")
	}
	assert.False(t, failed.Load(), "a requested stop is not a failure")
}

func TestWorker_ReadErrorReported(t *testing.T) {
	h := newScriptHandle()
	rec := &countingRecorder{}
	var gotHandle conn.Handle
	var gotErr error
	w := NewWorker(h, telemetry.NewState(), func(fh conn.Handle, err error) bool {
		gotHandle, gotErr = fh, err
		return true
	}, rec, logger.Noop())

	w.Start()
	ioErr := stderrors.New("device unplugged")
	h.errs <- ioErr

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after read error")
	}

	assert.False(t, w.Running())
	assert.Equal(t, conn.Handle(h), gotHandle)
	assert.Equal(t, ioErr, gotErr)
	assert.Equal(t, int32(1), rec.failed.Load())
}

func TestWorker_StartTwice(t *testing.T) {
	h := newScriptHandle()
	w := NewWorker(h, telemetry.NewState(), nil, nil, nil)
	w.Start()
	w.Start()

	w.Stop()
	require.NoError(t, h.Close())
	<-w.Done()
}

// handleOpener opens scriptHandles and lets tests inspect them.
type handleOpener struct {
	mu      sync.Mutex
	handles []*scriptHandle
	// busyAtOpen records, per open, how many reads were in flight on any
	// earlier handle when the new one was opened.
	busyAtOpen []int32
}

func (o *handleOpener) open(string, int) (conn.Handle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var busy int32
	for _, h := range o.handles {
		busy += h.inFlight.Load()
	}
	o.busyAtOpen = append(o.busyAtOpen, busy)

	h := newScriptHandle()
	o.handles = append(o.handles, h)
	return h, nil
}

func (o *handleOpener) last() *scriptHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handles[len(o.handles)-1]
}

func newTestLink(t *testing.T, rec Recorder) (*Link, *conn.Manager, *handleOpener, *telemetry.State) {
	t.Helper()
	o := &handleOpener{}
	mgr := conn.NewManager(o.open, conn.WithLogger(logger.Noop()), conn.WithReadTimeout(20*time.Millisecond))
	state := telemetry.NewState()
	opts := []LinkOption{WithLogger(logger.Noop())}
	if rec != nil {
		opts = append(opts, WithRecorder(rec))
	}
	l := NewLink(mgr, state, opts...)
	t.Cleanup(l.Disconnect)
	return l, mgr, o, state
}

func TestLink_ConnectPublishesSamples(t *testing.T) {
	rec := &countingRecorder{}
	l, mgr, o, state := newTestLink(t, rec)

	require.NoError(t, l.Connect("/dev/ttyUSB0", 9600))
	assert.Equal(t, conn.Connected, mgr.State().Kind)
	assert.True(t, l.Active())

	o.last().chunks <- []byte("120,3500,45.0,88\n")

	want := telemetry.Sample{Speed: 120, RPM: 3500, Load: 45, Temp: 88}
	require.Eventually(t, func() bool { return state.Get() == want }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), rec.parsed.Load())
}

func TestLink_DisconnectJoinsWorker(t *testing.T) {
	l, mgr, o, state := newTestLink(t, nil)

	require.NoError(t, l.Connect("/dev/ttyUSB0", 9600))
	o.last().chunks <- []byte("50,1500,20.0,70\n")
	require.Eventually(t, func() bool { return state.Get().Speed == 50 }, time.Second, 5*time.Millisecond)

	l.Disconnect()

	assert.False(t, l.Active())
	assert.Equal(t, conn.State{Kind: conn.Disconnected}, mgr.State())
	assert.True(t, o.last().isClosed())
	assert.Zero(t, o.last().inFlight.Load(), "no read in flight after Disconnect returns")
	assert.Equal(t, float64(50), state.Get().Speed, "last sample kept after disconnect")

	l.Disconnect()
	assert.Equal(t, conn.State{Kind: conn.Disconnected}, mgr.State())
}

func TestLink_ReconnectWaitsForPriorWorker(t *testing.T) {
	l, _, o, _ := newTestLink(t, nil)

	require.NoError(t, l.Connect("/dev/ttyUSB0", 9600))
	require.NoError(t, l.Connect("/dev/ttyUSB1", 9600))
	require.NoError(t, l.Connect("/dev/ttyUSB2", 9600))

	o.mu.Lock()
	defer o.mu.Unlock()
	require.Len(t, o.handles, 3)
	assert.Equal(t, []int32{0, 0, 0}, o.busyAtOpen, "earlier workers fully exited before each open")
	assert.True(t, o.handles[0].isClosed())
	assert.True(t, o.handles[1].isClosed())
	assert.False(t, o.handles[2].isClosed())
}

func TestLink_ReadErrorMovesToError(t *testing.T) {
	rec := &countingRecorder{}
	l, mgr, o, _ := newTestLink(t, rec)

	require.NoError(t, l.Connect("/dev/ttyUSB0", 9600))
	o.last().errs <- stderrors.New("device unplugged")

	require.Eventually(t, func() bool { return mgr.State().Kind == conn.Error }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "device unplugged", mgr.State().Message)
	require.Eventually(t, func() bool { return !l.Active() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), rec.failed.Load())

	// No automatic retry: still one handle.
	time.Sleep(50 * time.Millisecond)
	o.mu.Lock()
	assert.Len(t, o.handles, 1)
	o.mu.Unlock()

	require.NoError(t, l.Connect("/dev/ttyUSB0", 9600))
	assert.Equal(t, conn.Connected, mgr.State().Kind)
}

func TestLink_ConnectError(t *testing.T) {
	l, mgr, _, _ := newTestLink(t, nil)

	err := l.Connect("/dev/ttyUSB0", 4800)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, conn.ErrBadBaud))
	assert.False(t, l.Active())
	assert.Equal(t, conn.Error, mgr.State().Kind)
}
