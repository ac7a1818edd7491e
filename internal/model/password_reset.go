package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PasswordReset is a one-time reset code issued for a user. Prior codes
// for the same user are removed when a new one is issued, so at most one
// live code exists per user.
type PasswordReset struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Code      string        `bson:"code"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
