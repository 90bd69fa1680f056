package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	obderrors "github.com/rileyhilliard/obddash/internal/errors"
	"github.com/rileyhilliard/obddash/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return obderrors.WrapWithCode(err, obderrors.ErrConfig,
			"Couldn't listen on metrics address "+addr,
			"Pick a free host:port for metrics.listen, or leave it empty")
	}
	return m.serve(ctx, ln, log)
}

func (m *Metrics) serve(ctx context.Context, ln net.Listener, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving metrics on http://%s/metrics", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return obderrors.WrapWithCode(err, obderrors.ErrIO, "Metrics server stopped", "")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
