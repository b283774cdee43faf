package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/stillwater-dev/inboxd/internal/models"
	"github.com/stillwater-dev/inboxd/internal/request"
	"go.uber.org/zap"
)

// UserHeader carries the authenticated user id injected by the upstream
// gateway. Authentication itself happens there; this service only needs the
// identity.
const UserHeader = "X-User-ID"

// UserContext resolves the gateway-injected user header into a user on the
// request context. Requests without a valid user id are rejected.
func UserContext(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(UserHeader)
			if raw == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing user identity", logger)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid user identity", logger)
				return
			}

			user := &models.User{ID: userID}
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}
