// ABOUTME: Outbound request logging interceptor with correlation IDs
// ABOUTME: Logs request start/end with method, sanitized path, status, and latency

package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID to the backend
const RequestIDHeader = "X-Request-ID"

// LogRequests logs every outbound request and tags it with a request ID
func LogRequests(logger *slog.Logger) Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			requestID := uuid.NewString()

			r = r.Clone(r.Context())
			r.Header.Set(RequestIDHeader, requestID)
			path := sanitizePath(r.URL.Path)

			logger.Debug("Request started",
				"request_id", requestID,
				"method", r.Method,
				"path", path,
			)

			resp, err := next.RoundTrip(r)
			if err != nil {
				logger.Warn("Request failed",
					"request_id", requestID,
					"method", r.Method,
					"path", path,
					"error", err,
					"latency_ms", time.Since(start).Milliseconds(),
				)
				return nil, err
			}

			logger.Info("Request completed",
				"request_id", requestID,
				"method", r.Method,
				"path", path,
				"status", resp.StatusCode,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		})
	}
}

// sanitizePath strips control characters and redacts one-time auth keys
func sanitizePath(path string) string {
	const exchangePrefix = "/auth/login/"
	if i := strings.Index(path, exchangePrefix); i >= 0 {
		path = path[:i+len(exchangePrefix)] + "[redacted]"
	}
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, path)
}
