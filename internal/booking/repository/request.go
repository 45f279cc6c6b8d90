package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingerrors "slotbook/internal/booking/errors"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"
)

type RequestRepository interface {
	Create(ctx context.Context, request *model.BookingRequest) error
	FindByID(ctx context.Context, id string) (*model.BookingRequest, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		collection: db.Collection(RequestCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo, cfg.ClaimRetryAttempts, cfg.ClaimRetryBase),
	}
}

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.BookingRequest) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var request model.BookingRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find booking request: %w", err)
	}

	return &request, nil
}

func (r *mongoRequestRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.BookingRequest, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.BookingRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode booking requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count booking requests: %w", err)
	}

	return count, nil
}

// Close flips an open request to closed. Returns false when the request was
// already closed, which callers treat as an idempotent no-op.
func (r *mongoRequestRepository) Close(ctx context.Context, id string, at time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": model.RequestStatusOpen}
	update := bson.M{"$set": bson.M{
		"status":    model.RequestStatusClosed,
		"closed_at": at,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to close booking request: %w", err)
	}

	if result.MatchedCount == 0 {
		// Distinguish "already closed" from "does not exist".
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return false, fmt.Errorf("failed to check booking request existence: %w", countErr)
		}
		if count == 0 {
			return false, bookingerrors.ErrRequestNotFound
		}
		return false, nil
	}

	return true, nil
}

func (r *mongoRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking request: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingerrors.ErrRequestNotFound
	}

	return nil
}

func (r *mongoRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
