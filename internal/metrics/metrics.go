// Package metrics exposes the worker's Prometheus collectors and the exporter server.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"acuity_offchain_worker/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "acuity_worker_http_requests_total",
	Help: "HTTP requests served by the responder, by status code",
}, []string{"code"})

var httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "acuity_worker_http_request_duration_seconds",
	Help:    "HTTP request latency of the responder",
	Buckets: prometheus.DefBuckets,
})

var chainRPCCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "acuity_worker_chain_rpc_calls_total",
	Help: "JSON-RPC calls issued to the node, by method and outcome",
}, []string{"method", "outcome"})

var chainRPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "acuity_worker_chain_rpc_duration_seconds",
	Help:    "JSON-RPC round-trip latency to the node",
	Buckets: prometheus.DefBuckets,
}, []string{"method"})

var chainReady = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "acuity_worker_chain_ready",
	Help: "1 when the node connection is ready, 0 otherwise",
})

// ObserveHTTP records one served request.
func ObserveHTTP(code int, started time.Time) {
	httpRequests.WithLabelValues(strconv.Itoa(code)).Inc()
	httpDuration.Observe(time.Since(started).Seconds())
}

// ObserveRPC records one node call.
func ObserveRPC(method string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	chainRPCCalls.WithLabelValues(method, outcome).Inc()
	chainRPCDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

// SetChainReady flips the readiness gauge.
func SetChainReady(ready bool) {
	if ready {
		chainReady.Set(1)
		return
	}
	chainReady.Set(0)
}

// Server serves /metrics on its own listener so the responder keeps a single route.
type Server struct {
	httpServer *http.Server
	logger     logger.AppLogger
}

// NewServer creates the exporter server for addr.
func NewServer(addr string, appLogger logger.AppLogger) *Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          appLogger.StdLogger(),
		},
		logger: appLogger,
	}
}

// Start runs the exporter until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Metrics server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Metrics server ListenAndServe error", "error", err)
		return err
	}
	return nil
}

// Shutdown gracefully stops the exporter.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
