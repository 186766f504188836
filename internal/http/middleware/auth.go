package middleware

import (
	"net/http"
	"strings"

	"github.com/botucare/clinic-backend/internal/identity"
)

// Auth authenticates every request with the identity service and stores the
// actor on the request context. Requests without a valid live session get 401.
func Auth(svc *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(auth, "Bearer ")
			actor, err := svc.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

// RequireAdmin rejects requests whose actor is not an admin. It must run
// after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			http.Error(w, `{"error":"admin role required"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
