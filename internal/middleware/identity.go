package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rfmelo/corretora/internal/auth"
)

// IdentityMiddleware propagates the authenticated user set by the
// upstream auth layer (X-User-ID header) into the request context.
// Requests without a parsable ID pass through unauthenticated; handlers
// that need an identity reject them.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(auth.ContextWithUserID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
