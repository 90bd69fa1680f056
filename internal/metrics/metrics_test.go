package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/obddash/internal/conn"
	"github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/ingest"
	"github.com/rileyhilliard/obddash/internal/logger"
)

var _ ingest.Recorder = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	m := New()

	m.LineParsed()
	m.LineParsed()
	m.LineDropped()
	m.ReadFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.linesParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linesDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readErrors))
}

func TestSetState(t *testing.T) {
	m := New()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connState.WithLabelValues("disconnected")))

	m.SetState(conn.State{Kind: conn.Connected})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connState.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connState.WithLabelValues("disconnected")))

	m.SetState(conn.State{Kind: conn.Error, Message: "gone"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connState.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connState.WithLabelValues("connected")))
	assert.Equal(t, len(conn.Kinds), testutil.CollectAndCount(m.connState))
}

func TestRegistryExposition(t *testing.T) {
	m := New()
	m.LineDropped()

	expected := `
# HELP obddash_lines_dropped_total Telemetry lines dropped as malformed or overlong.
# TYPE obddash_lines_dropped_total counter
obddash_lines_dropped_total 1
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "obddash_lines_dropped_total")
	assert.NoError(t, err)
}

func TestServe(t *testing.T) {
	m := New()
	m.LineParsed()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.serve(ctx, ln, logger.NewBufferLogger()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Contains(t, body, "obddash_lines_parsed_total 1")
	assert.Contains(t, body, `obddash_connection_state{state="disconnected"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_BadAddress(t *testing.T) {
	m := New()

	err := m.Serve(context.Background(), "not-an-address", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
