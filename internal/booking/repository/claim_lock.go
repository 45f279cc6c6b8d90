package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "slotbook/internal/booking/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
)

// ClaimLockRepository provides the per-request advisory lock. The unique _id
// constraint makes Acquire atomic; the TTL index on expires_at cleans up
// after crashed holders.
type ClaimLockRepository interface {
	Acquire(ctx context.Context, lock *model.ClaimLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoClaimLockRepository struct {
	collection *mongo.Collection
}

func NewMongoClaimLockRepository(cfg *config.Config) ClaimLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoClaimLockRepository{
		collection: db.Collection(ClaimLockCollection),
	}
}

func (r *mongoClaimLockRepository) Acquire(ctx context.Context, lock *model.ClaimLock) error {
	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrLockHeld
		}
		return err
	}

	return nil
}

func (r *mongoClaimLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
