package restapi

import (
	"net/http"
	"time"

	"acuity_offchain_worker/internal/logger"
	"acuity_offchain_worker/internal/metrics"

	"golang.org/x/time/rate"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics records request count and latency.
func withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.ObserveHTTP(rec.status, started)
	})
}

// withRateLimit rejects requests beyond a global token bucket. A nil limiter disables it.
func withRateLimit(limiter *rate.Limiter, l logger.AppLogger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			requestLogger := l.With("method", r.Method, "path", r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), requestLogger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newLimiter builds the token bucket for rps/burst; rps <= 0 disables limiting.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
