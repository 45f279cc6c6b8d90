package middleware

import (
	"crypto/subtle"
	"net/http"

	"slotbook/pkg/logger"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKeyVerification guards the organizer surface. It is a deliberately
// separate channel from the public bearer tokens: invite tokens never grant
// organizer operations.
func AdminKeyVerification(apiKey string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(AdminKeyHeader)

			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
				log.Warn("Admin key verification failed",
					"request_id", requestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
