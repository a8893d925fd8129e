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
	CostCollectionName = "Cost_records"
)

type CostRecordRepository interface {
	Create(ctx context.Context, record *model.CostRecord) error
	FindByID(ctx context.Context, id string) (*model.CostRecord, error)
	Find(ctx context.Context, filter RecordFilter, limit int, offset int64) ([]*model.CostRecord, error)
	Count(ctx context.Context, filter RecordFilter) (int64, error)
	Delete(ctx context.Context, id string) error
}

type mongoCostRecordRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCostRecordRepository(cfg *config.Config) CostRecordRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCostRecordRepository{
		cfg:        cfg,
		collection: db.Collection(CostCollectionName),
	}
}

func (r *mongoCostRecordRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCostRecordRepository) Create(ctx context.Context, record *model.CostRecord) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	record.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create cost record: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCostRecordRepository) FindByID(ctx context.Context, id string) (*model.CostRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", historyerrors.ErrInvalidID, id)
	}

	var record model.CostRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, historyerrors.ErrCostNotFound
		}
		return nil, fmt.Errorf("failed to find cost record: %w", err)
	}

	return &record, nil
}

func (r *mongoCostRecordRepository) Find(ctx context.Context, filter RecordFilter, limit int, offset int64) ([]*model.CostRecord, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "incurred_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildRecordFilter(filter, "incurred_at"), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cost records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.CostRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode cost records: %w", err)
	}

	return records, nil
}

func (r *mongoCostRecordRepository) Count(ctx context.Context, filter RecordFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildRecordFilter(filter, "incurred_at"))
	if err != nil {
		return 0, fmt.Errorf("failed to count cost records: %w", err)
	}
	return count, nil
}

func (r *mongoCostRecordRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", historyerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete cost record: %w", err)
	}

	if result.DeletedCount == 0 {
		return historyerrors.ErrCostNotFound
	}

	return nil
}
