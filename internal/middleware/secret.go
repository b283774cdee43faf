package middleware

import (
	"crypto/subtle"
	"net/http"

	"go.uber.org/zap"
)

// CallbackSecretHeader authenticates the external classifier's callback
const CallbackSecretHeader = "X-Callback-Secret"

// InternalSecretHeader authenticates scheduler-triggered sweep and reindex
// calls
const InternalSecretHeader = "X-Internal-Secret"

// SharedSecret rejects requests whose header does not match the configured
// secret. The comparison is constant time.
func SharedSecret(header, secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(header)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				logger.Warn("shared_secret_rejected",
					zap.String("header", header),
					zap.String("path", r.URL.Path),
				)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing or invalid secret", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
