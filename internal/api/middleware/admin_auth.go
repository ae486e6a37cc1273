package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/domain"
)

// AdminKeyAuth guards admin routes with a static key sent either as
// "Authorization: Bearer <key>" or "X-Admin-Key: <key>".
// An empty key disables the routes.
func AdminKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				api.Error(w, http.StatusForbidden, "admin api disabled")
				return
			}

			token := r.Header.Get("X-Admin-Key")
			if token == "" {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					api.Error(w, http.StatusUnauthorized, "missing authorization header")
					return
				}
				if !strings.HasPrefix(authHeader, "Bearer ") {
					api.Error(w, http.StatusUnauthorized, "invalid authorization format")
					return
				}
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
				api.HandleError(w, r, domain.ErrInvalidAdminKey)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
