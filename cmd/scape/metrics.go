package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lixenwraith/scape/core"
	"github.com/lixenwraith/scape/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// metricsServer exposes the status registry on /metrics
type metricsServer struct {
	srv *http.Server
	log zerolog.Logger
}

func newMetricsHandler(namespace string, reg *status.Registry) http.Handler {
	preg := prometheus.NewRegistry()
	preg.MustRegister(
		status.NewCollector(namespace, reg),
		collectors.NewGoCollector(),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(preg, promhttp.HandlerOpts{}))
	return mux
}

func startMetrics(addr, namespace string, reg *status.Registry, log zerolog.Logger) *metricsServer {
	m := &metricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newMetricsHandler(namespace, reg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log.With().Str("component", "metrics").Logger(),
	}
	core.Go(func() {
		m.log.Info().Str("addr", addr).Msg("metrics listening")
		if err := m.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Msg("metrics server failed")
		}
	})
	return m
}

// Close implements io.Closer
func (m *metricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}
