// Package metrics exposes ingestion and connection counters on a private
// Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rileyhilliard/obddash/internal/conn"
)

// Metrics implements ingest.Recorder and tracks the connection state.
type Metrics struct {
	registry *prometheus.Registry

	linesParsed  prometheus.Counter
	linesDropped prometheus.Counter
	readErrors   prometheus.Counter
	connState    *prometheus.GaugeVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obddash_lines_parsed_total",
			Help: "Telemetry lines parsed and published.",
		}),
		linesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obddash_lines_dropped_total",
			Help: "Telemetry lines dropped as malformed or overlong.",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "obddash_read_errors_total",
			Help: "Device reads that failed and ended a connection.",
		}),
		connState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "obddash_connection_state",
			Help: "Current connection state (1 for the active state, 0 otherwise).",
		}, []string{"state"}),
	}
	m.registry.MustRegister(m.linesParsed, m.linesDropped, m.readErrors, m.connState)
	m.SetState(conn.State{Kind: conn.Disconnected})
	return m
}

// Registry returns the registry backing the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) LineParsed()  { m.linesParsed.Inc() }
func (m *Metrics) LineDropped() { m.linesDropped.Inc() }
func (m *Metrics) ReadFailed()  { m.readErrors.Inc() }

// SetState marks s as the active connection state. It has the signature of
// a conn.Manager observer.
func (m *Metrics) SetState(s conn.State) {
	for _, k := range conn.Kinds {
		v := 0.0
		if k == s.Kind {
			v = 1
		}
		m.connState.WithLabelValues(k.String()).Set(v)
	}
}
