package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naruebet/portal-auth-api/internal/ratelimit"
	"github.com/naruebet/portal-auth-api/internal/usecase"
)

type stubResetUsecase struct {
	requestFn func(ctx context.Context, email string) error
	resetFn   func(ctx context.Context, code, newPassword string) error
}

func (s *stubResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubResetUsecase) ResetPassword(ctx context.Context, code, newPassword string) error {
	return s.resetFn(ctx, code, newPassword)
}

func forgotRequest(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password",
		strings.NewReader(`{"email":"a@b.com"}`))
	req.RemoteAddr = addr
	return req
}

func TestForgotPassword(t *testing.T) {
	h := NewPasswordResetHandler(&stubResetUsecase{
		requestFn: func(_ context.Context, email string) error {
			assert.Equal(t, "a@b.com", email)
			return nil
		},
	}, ratelimit.New(5, 15*time.Minute), nopLogger())

	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, forgotRequest("10.0.0.1:4321"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Reset code sent successfully"}`, rec.Body.String())
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	h := NewPasswordResetHandler(&stubResetUsecase{
		requestFn: func(_ context.Context, _ string) error {
			return usecase.ErrUserNotFound
		},
	}, ratelimit.New(5, 15*time.Minute), nopLogger())

	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, forgotRequest("10.0.0.1:4321"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"No account found with this email"}`, rec.Body.String())
}

func TestForgotPassword_RateLimited(t *testing.T) {
	calls := 0
	h := NewPasswordResetHandler(&stubResetUsecase{
		requestFn: func(_ context.Context, _ string) error {
			calls++
			return nil
		},
	}, ratelimit.New(1, 15*time.Minute), nopLogger())

	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, forgotRequest("10.0.0.1:4321"))
	require.Equal(t, http.StatusOK, rec.Code)

	// Same address, limit exhausted: advisory retry-after, no usecase call.
	rec = httptest.NewRecorder()
	h.ForgotPassword(rec, forgotRequest("10.0.0.1:9999"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 1, calls)

	// A different address is unaffected.
	rec = httptest.NewRecorder()
	h.ForgotPassword(rec, forgotRequest("10.0.0.2:4321"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPassword(t *testing.T) {
	h := NewPasswordResetHandler(&stubResetUsecase{
		resetFn: func(_ context.Context, code, newPassword string) error {
			assert.Equal(t, "123456", code)
			assert.Equal(t, "password2", newPassword)
			return nil
		},
	}, ratelimit.New(5, 15*time.Minute), nopLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"code":"123456","newPassword":"password2"}`))
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password reset successfully"}`, rec.Body.String())
}

func TestResetPassword_InvalidCode(t *testing.T) {
	h := NewPasswordResetHandler(&stubResetUsecase{
		resetFn: func(_ context.Context, _, _ string) error {
			return usecase.ErrCodeInvalidOrExpired
		},
	}, ratelimit.New(5, 15*time.Minute), nopLogger())

	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password",
		strings.NewReader(`{"code":"123456","newPassword":"password2"}`))
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired reset code"}`, rec.Body.String())
}
