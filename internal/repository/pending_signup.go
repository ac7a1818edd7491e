package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/naruebet/portal-auth-api/internal/model"
)

// PendingSignupRepository defines the interface for staged signup operations.
type PendingSignupRepository interface {
	// UpsertByEmail stages a signup, replacing any prior staged attempt
	// for the same email together with its code, expiry and used flag.
	UpsertByEmail(ctx context.Context, pending *model.PendingSignup) error

	// GetByEmailAndCode retrieves a staged signup matching both the email
	// and the one-time code.
	GetByEmailAndCode(ctx context.Context, email, code string) (*model.PendingSignup, error)

	// DeleteByEmail removes the staged signup for an email.
	DeleteByEmail(ctx context.Context, email string) error

	// DeleteExpiredOrUsed removes every staged signup that has expired or
	// was already consumed, returning how many were deleted.
	DeleteExpiredOrUsed(ctx context.Context) (int64, error)
}

const pendingSignupCollection = "pending_signups"

type pendingSignupMongoRepository struct {
	db *mongo.Database
}

// NewPendingSignupMongoRepository creates the staged signup repository and
// ensures the unique email index exists.
func NewPendingSignupMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PendingSignupRepository {
	collection := db.Collection(pendingSignupCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pending signup indexes")
	}

	return &pendingSignupMongoRepository{db: db}
}

func (r *pendingSignupMongoRepository) UpsertByEmail(ctx context.Context, pending *model.PendingSignup) error {
	now := time.Now()

	update := bson.M{
		"$set": bson.M{
			"username":      pending.Username,
			"password_hash": pending.PasswordHash,
			"phone_number":  pending.PhoneNumber,
			"gender":        pending.Gender,
			"otp_code":      pending.OTPCode,
			"expires_at":    pending.ExpiresAt,
			"used":          false,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"email":      pending.Email,
			"created_at": now,
		},
	}

	_, err := r.db.Collection(pendingSignupCollection).UpdateOne(
		ctx,
		bson.M{"email": pending.Email},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (r *pendingSignupMongoRepository) GetByEmailAndCode(
	ctx context.Context,
	email, code string,
) (*model.PendingSignup, error) {
	filter := bson.M{
		"email":    email,
		"otp_code": code,
	}

	var pending model.PendingSignup
	err := r.db.Collection(pendingSignupCollection).FindOne(ctx, filter).Decode(&pending)
	if err != nil {
		return nil, err
	}

	return &pending, nil
}

func (r *pendingSignupMongoRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.db.Collection(pendingSignupCollection).DeleteOne(ctx, bson.M{"email": email})
	return err
}

func (r *pendingSignupMongoRepository) DeleteExpiredOrUsed(ctx context.Context) (int64, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$lt": time.Now()}},
			bson.M{"used": true},
		},
	}

	result, err := r.db.Collection(pendingSignupCollection).DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}
