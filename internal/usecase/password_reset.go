package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/naruebet/portal-auth-api/internal/model"
	"github.com/naruebet/portal-auth-api/internal/otp"
	"github.com/naruebet/portal-auth-api/internal/repository"
	"github.com/naruebet/portal-auth-api/internal/security"
)

// PasswordResetUsecase defines the business logic for password reset codes.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a reset code for the account owning
	// the email and sends it there.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword redeems a reset code and replaces the owning user's
	// password.
	ResetPassword(ctx context.Context, code, newPassword string) error
}

var ErrResetSendFailed = errors.New("failed to send password reset email")

type passwordResetUsecase struct {
	userRepo   repository.UserRepository
	resetRepo  repository.PasswordResetRepository
	transactor repository.Transactor
	sender     EmailSender
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	transactor repository.Transactor,
	sender EmailSender,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		transactor: transactor,
		sender:     sender,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	// A new request supersedes any outstanding code; at most one live
	// code exists per user.
	if err := u.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}

	reset, err := u.resetRepo.Create(ctx, &model.PasswordReset{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(otp.DefaultTTL),
	})
	if err != nil {
		return err
	}

	htmlBody := fmt.Sprintf(`
		<h1>Password Reset Code</h1>
		<p>Your password reset code is: <strong>%s</strong></p>
		<p>This code will expire in 10 minutes.</p>
		<p>If you didn't request this reset, please ignore this email.</p>
	`, code)

	if err := u.sender.SendHTML([]string{user.Email}, "Password Reset Code", htmlBody); err != nil {
		// The code never reached the user; remove it so it cannot
		// linger as a live credential.
		if delErr := u.resetRepo.DeleteByID(ctx, reset.ID); delErr != nil {
			return delErr
		}
		return fmt.Errorf("%w: %v", ErrResetSendFailed, err)
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, code, newPassword string) error {
	reset, err := u.resetRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCodeInvalidOrExpired
		}
		return err
	}

	// Used, expired and unknown codes are indistinguishable to the caller.
	if reset.Used || time.Now().After(reset.ExpiresAt) {
		return ErrCodeInvalidOrExpired
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Replace the credential and consume the code as one unit.
	return u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := u.userRepo.UpdateUser(ctx, reset.UserID.Hex(), repository.UpdateUserParams{
			PasswordHash: &passwordHash,
		}); err != nil {
			return err
		}

		return u.resetRepo.MarkUsed(ctx, reset.ID)
	})
}
