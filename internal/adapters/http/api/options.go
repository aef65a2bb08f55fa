package api

import (
	"net/http"

	"github.com/okian/coachboard/pkg/logger"
)

const defaultMaxBodyBytes int64 = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps request bodies. Values of 0 or less keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRateLimit enables a shared token bucket for /api routes. An rps of 0
// or less disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = newRateLimiter(rps, burst)
	}
}

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}
