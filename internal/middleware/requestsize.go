package middleware

import "net/http"

// DefaultMaxRequestSize caps request bodies at 1MB. Capture payloads are at
// most a few KB, so this leaves generous headroom.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects oversized bodies before handlers read them
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			// MaxBytesReader catches chunked bodies that never declared a
			// length
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
