package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	historyerrors "evshare/internal/history/errors"
	"evshare/pkg/config"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsageCollectionName = "Usage_records"
)

// RecordFilter narrows history queries. Nil/empty fields are ignored.
type RecordFilter struct {
	VehicleID string
	CoOwnerID string
	StartTime *time.Time
	EndTime   *time.Time
}

type UsageRecordRepository interface {
	Create(ctx context.Context, record *model.UsageRecord) error
	FindByID(ctx context.Context, id string) (*model.UsageRecord, error)
	Find(ctx context.Context, filter RecordFilter, limit int, offset int64) ([]*model.UsageRecord, error)
	Count(ctx context.Context, filter RecordFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type mongoUsageRecordRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUsageRecordRepository(cfg *config.Config) UsageRecordRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUsageRecordRepository{
		cfg:        cfg,
		collection: db.Collection(UsageCollectionName),
	}
}

func (r *mongoUsageRecordRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoUsageRecordRepository) Create(ctx context.Context, record *model.UsageRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	record.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create usage record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUsageRecordRepository) FindByID(ctx context.Context, id string) (*model.UsageRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", historyerrors.ErrInvalidID, id)
	}

	var record model.UsageRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, historyerrors.ErrUsageNotFound
		}
		return nil, fmt.Errorf("failed to find usage record: %w", err)
	}

	return &record, nil
}

func (r *mongoUsageRecordRepository) Find(ctx context.Context, filter RecordFilter, limit int, offset int64) ([]*model.UsageRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildRecordFilter(filter, "start_time"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find usage records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.UsageRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode usage records: %w", err)
	}

	return records, nil
}

func (r *mongoUsageRecordRepository) Count(ctx context.Context, filter RecordFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildRecordFilter(filter, "start_time"))
	if err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return count, nil
}

func (r *mongoUsageRecordRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", historyerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete usage record: %w", err)
	}

	if result.DeletedCount == 0 {
		return historyerrors.ErrUsageNotFound
	}

	return nil
}

// buildRecordFilter translates a RecordFilter into a mongo query carried by
// both history repositories; timeField names the document field the date
// range applies to.
func buildRecordFilter(filter RecordFilter, timeField string) bson.M {
	query := bson.M{}

	if filter.VehicleID != "" {
		query["vehicle_id"] = filter.VehicleID
	}
	if filter.CoOwnerID != "" {
		query["co_owner_id"] = filter.CoOwnerID
	}

	timeRange := bson.M{}
	if filter.StartTime != nil {
		timeRange["$gte"] = *filter.StartTime
	}
	if filter.EndTime != nil {
		timeRange["$lt"] = *filter.EndTime
	}
	if len(timeRange) > 0 {
		query[timeField] = timeRange
	}

	return query
}
