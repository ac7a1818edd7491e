package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Transactor runs a function inside a single database transaction. The
// context passed to fn carries the session, so repository calls made with
// it participate in the transaction and commit or abort together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client *mongo.Client
}

// NewMongoTransactor creates a Transactor backed by MongoDB sessions.
// Multi-document transactions require a replica set or mongos deployment.
func NewMongoTransactor(client *mongo.Client) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}
