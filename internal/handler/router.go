package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/naruebet/portal-auth-api/internal/auth"
	"github.com/naruebet/portal-auth-api/internal/middleware"
)

// RouterDeps bundles everything the router mounts.
type RouterDeps struct {
	AuthHandler          *AuthHandler
	PasswordResetHandler *PasswordResetHandler
	CronHandler          *CronHandler
	Guard                *middleware.Guard
	JWTAuth              auth.JWTAuthenticator
	TokenSecret          string
	Logger               *zerolog.Logger
}

// NewRouter builds the HTTP routing tree. The route guard wraps the whole
// tree so page paths are decided before any handler runs.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(deps.Guard.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup/initiate", deps.AuthHandler.InitiateSignup)
		r.Post("/signup/verify", deps.AuthHandler.VerifySignup)
		r.Post("/signin", deps.AuthHandler.SignIn)
		r.Get("/signout", deps.AuthHandler.SignOut)
		r.Post("/forgot-password", deps.PasswordResetHandler.ForgotPassword)
		r.Post("/reset-password", deps.PasswordResetHandler.ResetPassword)

		r.With(middleware.RequireSession(deps.JWTAuth, deps.TokenSecret)).
			Post("/change-password", deps.AuthHandler.ChangePassword)
	})

	r.Get("/cron/cleanup-pending-signups", deps.CronHandler.CleanupPendingSignups)

	return r
}
