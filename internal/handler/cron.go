package handler

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/naruebet/portal-auth-api/internal/usecase"
)

// CronHandler serves maintenance endpoints meant for a trusted scheduler,
// not end users.
type CronHandler struct {
	signupUsecase usecase.SignupUsecase
	secret        string
	logger        *zerolog.Logger
}

// NewCronHandler creates a new CronHandler instance.
func NewCronHandler(signupUsecase usecase.SignupUsecase, secret string, logger *zerolog.Logger) *CronHandler {
	return &CronHandler{
		signupUsecase: signupUsecase,
		secret:        secret,
		logger:        logger,
	}
}

// CleanupPendingSignups deletes expired or consumed staged signups.
func (h *CronHandler) CleanupPendingSignups(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	deleted, err := h.signupUsecase.SweepPendingSignups(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to cleanup pending signups")
		respondError(w, http.StatusInternalServerError, "Failed to cleanup pending signups")
		return
	}

	h.logger.Info().Int64("deleted", deleted).Msg("swept pending signups")

	respondJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Deleted %d expired pending signups", deleted),
		"deletedCount": deleted,
	})
}

func (h *CronHandler) authorized(r *http.Request) bool {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) == 1
}
