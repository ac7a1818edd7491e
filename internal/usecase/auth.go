package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/naruebet/portal-auth-api/internal/auth"
	"github.com/naruebet/portal-auth-api/internal/model"
	"github.com/naruebet/portal-auth-api/internal/repository"
	"github.com/naruebet/portal-auth-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// SignIn verifies credentials and issues a session token.
	SignIn(ctx context.Context, params SignInParams) (*SignInResult, error)

	// ChangePassword replaces the password of an authenticated user after
	// re-checking their current one.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// SignInParams defines the parameters for user sign-in.
type SignInParams struct {
	Email    string
	Password string
}

// SignInResult carries the issued session token and the signed-in user.
// The user's password hash is never serialized.
type SignInResult struct {
	Token string
	User  *model.User
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenSettings configures session token issuance.
type TokenSettings struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

type authUsecase struct {
	userRepo repository.UserRepository
	jwtAuth  auth.JWTAuthenticator
	token    TokenSettings
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	jwtAuth auth.JWTAuthenticator,
	token TokenSettings,
) AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		jwtAuth:  jwtAuth,
		token:    token,
	}
}

func (u *authUsecase) SignIn(ctx context.Context, params SignInParams) (*SignInResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Unknown email and wrong password produce the same error
			// so accounts cannot be enumerated.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	claims := auth.NewSessionClaims(user, u.token.Issuer, u.token.ExpiresIn)
	tokenStr, err := u.jwtAuth.GenerateToken(claims, u.token.Secret)
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Token: tokenStr,
		User:  user,
	}, nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if ok, err := security.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Claims other than the hash are unchanged, so the session token
	// stays valid and is not re-issued.
	_, err = u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})
	return err
}
