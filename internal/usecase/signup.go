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

// SignupUsecase defines the business logic for two-phase registration.
type SignupUsecase interface {
	// InitiateSignup stages a registration and emails a verification code.
	InitiateSignup(ctx context.Context, params InitiateSignupParams) error

	// VerifySignup redeems a verification code, promoting the staged
	// registration to a confirmed user.
	VerifySignup(ctx context.Context, email, code string) error

	// SweepPendingSignups deletes expired or consumed staged
	// registrations and returns how many were removed.
	SweepPendingSignups(ctx context.Context) (int64, error)
}

// InitiateSignupParams defines the parameters for staging a registration.
type InitiateSignupParams struct {
	Email       string
	Username    string
	Password    string
	PhoneNumber *string
	Gender      *string
}

var (
	ErrEmailAlreadyExists     = errors.New("email already registered")
	ErrCodeInvalidOrExpired   = errors.New("invalid or expired code")
	ErrVerificationSendFailed = errors.New("failed to send verification email")
)

type signupUsecase struct {
	userRepo    repository.UserRepository
	pendingRepo repository.PendingSignupRepository
	transactor  repository.Transactor
	sender      EmailSender
}

// NewSignupUsecase creates a new instance of SignupUsecase.
func NewSignupUsecase(
	userRepo repository.UserRepository,
	pendingRepo repository.PendingSignupRepository,
	transactor repository.Transactor,
	sender EmailSender,
) SignupUsecase {
	return &signupUsecase{
		userRepo:    userRepo,
		pendingRepo: pendingRepo,
		transactor:  transactor,
		sender:      sender,
	}
}

func (u *signupUsecase) InitiateSignup(ctx context.Context, params InitiateSignupParams) error {
	// A confirmed account already owning the email is a conflict.
	_, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return ErrEmailAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}

	// Replaces any earlier staged attempt for this email, invalidating
	// its code. At most one staged signup exists per address.
	pending := &model.PendingSignup{
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: passwordHash,
		PhoneNumber:  params.PhoneNumber,
		Gender:       params.Gender,
		OTPCode:      code,
		ExpiresAt:    time.Now().Add(otp.DefaultTTL),
	}

	if err := u.pendingRepo.UpsertByEmail(ctx, pending); err != nil {
		return err
	}

	htmlBody := fmt.Sprintf(`
		<h1>Email Verification</h1>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>This code will expire in 10 minutes.</p>
	`, code)

	if err := u.sender.SendHTML([]string{params.Email}, "Verify Your Email", htmlBody); err != nil {
		// The staged row stays; the periodic sweep reclaims it once
		// its code expires.
		return fmt.Errorf("%w: %v", ErrVerificationSendFailed, err)
	}

	return nil
}

func (u *signupUsecase) VerifySignup(ctx context.Context, email, code string) error {
	pending, err := u.pendingRepo.GetByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Wrong code and missing staging are indistinguishable to
			// the caller.
			return ErrCodeInvalidOrExpired
		}
		return err
	}

	if pending.Used || time.Now().After(pending.ExpiresAt) {
		return ErrCodeInvalidOrExpired
	}

	// Promote the staged registration: create the confirmed user and
	// remove the staging record as one unit.
	return u.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := u.userRepo.CreateUser(ctx, &model.User{
			Email:        pending.Email,
			Username:     pending.Username,
			PasswordHash: pending.PasswordHash,
			PhoneNumber:  pending.PhoneNumber,
			Gender:       pending.Gender,
			Role:         model.RoleUser,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrEmailAlreadyExists
			}
			return err
		}

		return u.pendingRepo.DeleteByEmail(ctx, pending.Email)
	})
}

func (u *signupUsecase) SweepPendingSignups(ctx context.Context) (int64, error) {
	return u.pendingRepo.DeleteExpiredOrUsed(ctx)
}
