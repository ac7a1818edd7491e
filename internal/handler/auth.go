package handler

import (
	"errors"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/naruebet/portal-auth-api/internal/middleware"
	"github.com/naruebet/portal-auth-api/internal/usecase"
)

// CookieSettings configures the session cookie written on sign-in.
type CookieSettings struct {
	// TTL matches the token's own expiry; the token claim is the
	// authoritative lifetime and the cookie simply mirrors it.
	TTL    time.Duration
	Secure bool
}

// AuthHandler serves the signup, sign-in and password-change endpoints.
type AuthHandler struct {
	signupUsecase usecase.SignupUsecase
	authUsecase   usecase.AuthUsecase
	validate      *validator.Validate
	trans         ut.Translator
	cookie        CookieSettings
	logger        *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	signupUsecase usecase.SignupUsecase,
	authUsecase usecase.AuthUsecase,
	cookie CookieSettings,
	logger *zerolog.Logger,
) *AuthHandler {
	validate, trans := newValidator(logger)

	return &AuthHandler{
		signupUsecase: signupUsecase,
		authUsecase:   authUsecase,
		validate:      validate,
		trans:         trans,
		cookie:        cookie,
		logger:        logger,
	}
}

func (h *AuthHandler) InitiateSignup(w http.ResponseWriter, r *http.Request) {
	var req InitiateSignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	err := h.signupUsecase.InitiateSignup(r.Context(), usecase.InitiateSignupParams{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			respondError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, usecase.ErrVerificationSendFailed):
			h.logger.Error().Err(err).Msg("failed to send signup verification email")
			respondError(w, http.StatusInternalServerError, "Failed to initiate signup")
		default:
			h.logger.Error().Err(err).Msg("failed to initiate signup")
			respondError(w, http.StatusInternalServerError, "Failed to initiate signup")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Verification code sent")
}

func (h *AuthHandler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req VerifySignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.signupUsecase.VerifySignup(r.Context(), req.Email, req.OTPCode); err != nil {
		switch {
		case errors.Is(err, usecase.ErrCodeInvalidOrExpired):
			respondError(w, http.StatusBadRequest, "Invalid or expired verification code")
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			respondError(w, http.StatusBadRequest, "Email already registered")
		default:
			h.logger.Error().Err(err).Msg("failed to verify signup")
			respondError(w, http.StatusInternalServerError, "Failed to verify signup")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Account created successfully")
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	result, err := h.authUsecase.SignIn(r.Context(), usecase.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// Same shape for unknown email and wrong password.
			respondError(w, http.StatusNotFound, "Invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("failed to sign in")
		respondError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    result.User,
	})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	// Sessions are stateless; signout is deleting the client's cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	respondMessage(w, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.SessionClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	err := h.authUsecase.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, usecase.ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, "Current password is incorrect")
		default:
			h.logger.Error().Err(err).Msg("failed to change password")
			respondError(w, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Password updated successfully")
}
