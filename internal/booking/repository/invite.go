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
	"slotbook/pkg/model"
)

type InviteRepository interface {
	CreateMany(ctx context.Context, invites []*model.Invite) error
	FindByToken(ctx context.Context, token string) (*model.Invite, error)
	FindByRequest(ctx context.Context, requestID string) ([]*model.Invite, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Invite, error)
	RecordClaim(ctx context.Context, inviteID string, details *model.ClaimDetails, at time.Time) error
	DeleteByRequest(ctx context.Context, requestID string) error
}

type mongoInviteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoInviteRepository(cfg *config.Config) InviteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInviteRepository{
		cfg:        cfg,
		collection: db.Collection(InviteCollection),
	}
}

func (r *mongoInviteRepository) CreateMany(ctx context.Context, invites []*model.Invite) error {
	if len(invites) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(invites))
	for _, invite := range invites {
		invite.CreatedAt = now
		docs = append(docs, invite)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create invites: %w", err)
	}

	for i, insertedID := range result.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok && i < len(invites) {
			invites[i].ID = oid.Hex()
		}
	}
	return nil
}

// FindByToken is the token resolution read: the token is the sole lookup key
// and the sole credential. Lookup is case-sensitive by construction.
func (r *mongoInviteRepository) FindByToken(ctx context.Context, token string) (*model.Invite, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var invite model.Invite
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&invite)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}

	return &invite, nil
}

func (r *mongoInviteRepository) FindByRequest(ctx context.Context, requestID string) ([]*model.Invite, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find invites: %w", err)
	}
	defer cursor.Close(ctx)

	var invites []*model.Invite
	if err = cursor.All(ctx, &invites); err != nil {
		return nil, fmt.Errorf("failed to decode invites: %w", err)
	}

	return invites, nil
}

func (r *mongoInviteRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Invite, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, oid)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to find invites: %w", err)
	}
	defer cursor.Close(ctx)

	var invites []*model.Invite
	if err = cursor.All(ctx, &invites); err != nil {
		return nil, fmt.Errorf("failed to decode invites: %w", err)
	}

	return invites, nil
}

// RecordClaim applies the invite side of a successful claim: bump the quota
// counter, flip status to responded, and overwrite the captured details with
// the latest claim's.
func (r *mongoInviteRepository) RecordClaim(ctx context.Context, inviteID string, details *model.ClaimDetails, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(inviteID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, inviteID)
	}

	update := bson.M{
		"$set": bson.M{
			"status":       model.InviteStatusResponded,
			"details":      details,
			"responded_at": at,
		},
		"$inc": bson.M{"claimed_count": 1},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to record claim on invite: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingerrors.ErrInviteNotFound
	}

	return nil
}

func (r *mongoInviteRepository) DeleteByRequest(ctx context.Context, requestID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return fmt.Errorf("failed to delete invites: %w", err)
	}
	return nil
}
