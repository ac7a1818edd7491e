package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/naruebet/portal-auth-api/internal/model"
)

// SessionClaims is the payload of a session token. The token is the only
// session state; nothing is stored server side and signout is purely
// client-side deletion of the cookie.
type SessionClaims struct {
	UserID   string     `json:"user_id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionClaims builds the claims for a freshly signed-in user.
func NewSessionClaims(user *model.User, issuer string, expiresIn time.Duration) SessionClaims {
	now := time.Now()

	return SessionClaims{
		UserID:   user.ID.Hex(),
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
}
