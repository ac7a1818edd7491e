package handler

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/naruebet/portal-auth-api/internal/ratelimit"
	"github.com/naruebet/portal-auth-api/internal/usecase"
)

// PasswordResetHandler serves the forgot-password and reset-password
// endpoints.
type PasswordResetHandler struct {
	resetUsecase usecase.PasswordResetUsecase
	limiter      *ratelimit.Limiter
	validate     *validator.Validate
	trans        ut.Translator
	logger       *zerolog.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler instance.
func NewPasswordResetHandler(
	resetUsecase usecase.PasswordResetUsecase,
	limiter *ratelimit.Limiter,
	logger *zerolog.Logger,
) *PasswordResetHandler {
	validate, trans := newValidator(logger)

	return &PasswordResetHandler{
		resetUsecase: resetUsecase,
		limiter:      limiter,
		validate:     validate,
		trans:        trans,
		logger:       logger,
	}
}

func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	// Rate limited per requesting address to slow enumeration attempts.
	if ok, retryAfter := h.limiter.Allow(clientAddress(r)); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		respondError(w, http.StatusTooManyRequests, "Too many reset requests, please try again later")
		return
	}

	var req ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.resetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "No account found with this email")
		case errors.Is(err, usecase.ErrResetSendFailed):
			h.logger.Error().Err(err).Msg("failed to send password reset email")
			respondError(w, http.StatusInternalServerError, "Failed to send reset code")
		default:
			h.logger.Error().Err(err).Msg("failed to request password reset")
			respondError(w, http.StatusInternalServerError, "Failed to send reset code")
		}
		return
	}

	respondMessage(w, http.StatusOK, "Reset code sent successfully")
}

func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request data")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, h.trans, err)
		return
	}

	if err := h.resetUsecase.ResetPassword(r.Context(), req.Code, req.NewPassword); err != nil {
		if errors.Is(err, usecase.ErrCodeInvalidOrExpired) {
			respondError(w, http.StatusBadRequest, "Invalid or expired reset code")
			return
		}
		h.logger.Error().Err(err).Msg("failed to reset password")
		respondError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	respondMessage(w, http.StatusOK, "Password reset successfully")
}

// clientAddress keys the rate limiter. RemoteAddr has already been
// rewritten by the RealIP middleware when forwarding headers are present.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
