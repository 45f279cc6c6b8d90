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

type SlotRepository interface {
	CreateMany(ctx context.Context, slots []*model.Slot) error
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindByRequest(ctx context.Context, requestID string) ([]*model.Slot, error)
	CountBookedOverlapping(ctx context.Context, requestID string, start, end time.Time) (int64, error)
	ClaimAvailable(ctx context.Context, slotID, inviteID string, at time.Time) error
	FindBooked(ctx context.Context, limit int, offset int64) ([]*model.Slot, error)
	CountBooked(ctx context.Context) (int64, error)
	DeleteByRequest(ctx context.Context, requestID string) error
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(SlotCollection),
	}
}

func (r *mongoSlotRepository) CreateMany(ctx context.Context, slots []*model.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create slots: %w", err)
	}

	for i, insertedID := range result.InsertedIDs {
		if oid, ok := insertedID.(primitive.ObjectID); ok && i < len(slots) {
			slots[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByRequest(ctx context.Context, requestID string) ([]*model.Slot, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"request_id": requestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

// CountBookedOverlapping counts booked slots of the request whose range
// intersects [start, end). Range intersection is start_time < end AND
// end_time > start.
func (r *mongoSlotRepository) CountBookedOverlapping(ctx context.Context, requestID string, start, end time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"request_id": requestID,
		"status":     model.SlotStatusBooked,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping booked slots: %w", err)
	}
	return count, nil
}

// ClaimAvailable performs the conditional available->booked transition. The
// status filter makes the update a compare-and-set: if another claim already
// booked the slot the filter matches nothing and ErrSlotTaken is returned.
func (r *mongoSlotRepository) ClaimAvailable(ctx context.Context, slotID, inviteID string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, slotID)
	}

	filter := bson.M{"_id": objectID, "status": model.SlotStatusAvailable}
	update := bson.M{"$set": bson.M{
		"status":     model.SlotStatusBooked,
		"claimed_by": inviteID,
		"claimed_at": at,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to claim slot: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingerrors.ErrSlotTaken
	}

	return nil
}

func (r *mongoSlotRepository) FindBooked(ctx context.Context, limit int, offset int64) ([]*model.Slot, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"status": model.SlotStatusBooked}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booked slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode booked slots: %w", err)
	}

	return slots, nil
}

func (r *mongoSlotRepository) CountBooked(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": model.SlotStatusBooked})
	if err != nil {
		return 0, fmt.Errorf("failed to count booked slots: %w", err)
	}
	return count, nil
}

func (r *mongoSlotRepository) DeleteByRequest(ctx context.Context, requestID string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"request_id": requestID})
	if err != nil {
		return fmt.Errorf("failed to delete slots: %w", err)
	}
	return nil
}
