package middleware

import (
	"net/http"
	"time"

	logpkg "github.com/stillwater-dev/inboxd/internal/logger"
	"github.com/stillwater-dev/inboxd/internal/request"
	"go.uber.org/zap"
)

// Logging emits one structured line per request. Health probe traffic logs
// at debug so liveness checks do not drown out real requests.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("client_ip", request.ClientIP(r)),
				zap.Int("status_code", rec.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if r.URL.Path == "/health" || r.URL.Path == "/ready" {
				logger.Debug("http_request", fields...)
				return
			}
			logger.Info("http_request", fields...)
		})
	}
}

// statusRecorder remembers the status code written by the handler. A handler
// that writes a body without calling WriteHeader implicitly sends 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}
