package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the authorization level assigned to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a confirmed account in the authentication system.
// The password hash is never serialized into API responses.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"          json:"id"`
	Email        string        `bson:"email"                  json:"email"`
	Username     string        `bson:"username"               json:"username"`
	PasswordHash string        `bson:"password_hash"          json:"-"`
	PhoneNumber  *string       `bson:"phone_number,omitempty" json:"phoneNumber,omitempty"`
	Gender       *string       `bson:"gender,omitempty"       json:"gender,omitempty"`
	Role         Role          `bson:"role"                   json:"role"`
	CreatedAt    time.Time     `bson:"created_at"             json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at"             json:"updatedAt"`
}
