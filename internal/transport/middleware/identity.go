package middleware

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/pkg/ctxutil"
)

// UserIDHeader carries the owner identity set by the upstream gateway.
const UserIDHeader = "X-User-Id"

// Identity puts the caller's user ID from X-User-Id into the context.
// Requests without the header pass through anonymously; services reject
// them with ErrUnauthorized where an owner is needed. A malformed header
// is rejected here with 401.
func Identity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid " + UserIDHeader}) //nolint:errcheck
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), userID)))
		})
	}
}
