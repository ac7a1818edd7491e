// Package middleware contains the HTTP interception layers applied before
// handlers run: the page route guard, session authentication and request
// logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/naruebet/portal-auth-api/internal/auth"
	"github.com/naruebet/portal-auth-api/internal/model"
)

// Page prefixes the guard decides on.
const (
	adminPrefix   = "/protected"
	memberPrefix  = "/dashboard"
	signInPage    = "/auth/sign-in"
	signUpPage    = "/auth/sign-up"
	signInTarget  = signInPage
	landingTarget = memberPrefix
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// Decision is the outcome of evaluating a request against the guard.
type Decision int

const (
	// Allow lets the request through to its handler.
	Allow Decision = iota

	// RedirectSignIn sends the client to the sign-in page.
	RedirectSignIn

	// RedirectDashboard sends the client to the authenticated landing page.
	RedirectDashboard
)

// Guard decides, per request, whether a page may be served. Tokens are
// cryptographically verified before any claim is trusted; decoding alone
// is forgeable and is never used for the admin gate.
type Guard struct {
	jwtAuth auth.JWTAuthenticator
	secret  string
}

// NewGuard creates a route guard verifying tokens with the given secret.
func NewGuard(jwtAuth auth.JWTAuthenticator, secret string) *Guard {
	return &Guard{jwtAuth: jwtAuth, secret: secret}
}

// Decide evaluates the ordered decision procedure for a path and the raw
// token from the client's cookie (empty when absent).
func (g *Guard) Decide(path, token string) Decision {
	// Admin-only area: token must be present, verify and carry the
	// ADMIN role.
	if strings.HasPrefix(path, adminPrefix) {
		if token == "" {
			return RedirectSignIn
		}
		claims, err := g.verify(token)
		if err != nil {
			return RedirectSignIn
		}
		if claims.Role != model.RoleAdmin {
			return RedirectDashboard
		}
		return Allow
	}

	// Unauthenticated: only the general authenticated area is closed.
	if token == "" {
		if strings.HasPrefix(path, memberPrefix) {
			return RedirectSignIn
		}
		return Allow
	}

	// A token is present: it must verify before anything else.
	if _, err := g.verify(token); err != nil {
		return RedirectSignIn
	}

	// Logged-in clients have no business on the auth forms.
	if strings.HasPrefix(path, signInPage) || strings.HasPrefix(path, signUpPage) {
		return RedirectDashboard
	}

	return Allow
}

func (g *Guard) verify(token string) (*auth.SessionClaims, error) {
	claims := &auth.SessionClaims{}
	if _, err := g.jwtAuth.ValidateTokenWithClaims(token, g.secret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// guardedPrefixes is the matcher: only page paths are decided by the
// guard. API endpoints answer with status codes, not redirects.
var guardedPrefixes = []string{adminPrefix, memberPrefix, signInPage, signUpPage}

// Guarded reports whether the guard decides requests for this path.
func Guarded(path string) bool {
	for _, prefix := range guardedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Handler applies the guard's decision to incoming page requests.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Guarded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var token string
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}

		switch g.Decide(r.URL.Path, token) {
		case RedirectSignIn:
			http.Redirect(w, r, signInTarget, http.StatusFound)
		case RedirectDashboard:
			http.Redirect(w, r, landingTarget, http.StatusFound)
		default:
			next.ServeHTTP(w, r)
		}
	})
}
