package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/naruebet/portal-auth-api/internal/auth"
)

type contextKey struct{}

var sessionClaimsKey = contextKey{}

// SessionClaimsFromContext returns the verified claims injected by
// RequireSession, or nil when the request is unauthenticated.
func SessionClaimsFromContext(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(sessionClaimsKey).(*auth.SessionClaims)
	return claims
}

// RequireSession verifies the session cookie and injects its claims into
// the request context. Requests without a valid token get 401.
func RequireSession(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			claims := &auth.SessionClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(cookie.Value, secret, claims); err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
