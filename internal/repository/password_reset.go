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

// PasswordResetRepository defines the interface for reset code operations.
type PasswordResetRepository interface {
	// Create stores a new reset code.
	Create(ctx context.Context, reset *model.PasswordReset) (*model.PasswordReset, error)

	// GetByCode retrieves a reset code record by its code.
	GetByCode(ctx context.Context, code string) (*model.PasswordReset, error)

	// MarkUsed marks a reset code as consumed.
	MarkUsed(ctx context.Context, id bson.ObjectID) error

	// DeleteByUserID removes every reset code belonging to a user.
	DeleteByUserID(ctx context.Context, userID bson.ObjectID) error

	// DeleteByID removes a single reset code.
	DeleteByID(ctx context.Context, id bson.ObjectID) error
}

const passwordResetCollection = "password_resets"

type passwordResetMongoRepository struct {
	db *mongo.Database
}

// NewPasswordResetMongoRepository creates the reset code repository and
// ensures its lookup indexes exist.
func NewPasswordResetMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetRepository {
	collection := db.Collection(passwordResetCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "code", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset indexes")
	}

	return &passwordResetMongoRepository{db: db}
}

func (r *passwordResetMongoRepository) Create(
	ctx context.Context,
	reset *model.PasswordReset,
) (*model.PasswordReset, error) {
	now := time.Now()
	reset.CreatedAt = now
	reset.UpdatedAt = now
	reset.Used = false

	result, err := r.db.Collection(passwordResetCollection).InsertOne(ctx, reset)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		reset.ID = objectID
	}

	return reset, nil
}

func (r *passwordResetMongoRepository) GetByCode(ctx context.Context, code string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.Collection(passwordResetCollection).FindOne(ctx, bson.M{"code": code}).Decode(&reset)
	if err != nil {
		return nil, err
	}

	return &reset, nil
}

func (r *passwordResetMongoRepository) MarkUsed(ctx context.Context, id bson.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"used":       true,
			"updated_at": time.Now(),
		},
	}

	_, err := r.db.Collection(passwordResetCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *passwordResetMongoRepository) DeleteByUserID(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.db.Collection(passwordResetCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *passwordResetMongoRepository) DeleteByID(ctx context.Context, id bson.ObjectID) error {
	_, err := r.db.Collection(passwordResetCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}
