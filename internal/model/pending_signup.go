package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PendingSignup is a staged registration awaiting email confirmation.
// At most one exists per email; re-initiating a signup replaces the
// staged data and its verification code in place.
type PendingSignup struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Username     string        `bson:"username"`
	PasswordHash string        `bson:"password_hash"`
	PhoneNumber  *string       `bson:"phone_number,omitempty"`
	Gender       *string       `bson:"gender,omitempty"`
	OTPCode      string        `bson:"otp_code"`
	Used         bool          `bson:"used"`
	ExpiresAt    time.Time     `bson:"expires_at"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}
