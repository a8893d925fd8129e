package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "evshare/internal/payments/errors"
	"evshare/pkg/config"
	mongotx "evshare/pkg/db/mongo"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CostShareCollectionName = "Cost_shares"
)

type CostShareRepository interface {
	Create(ctx context.Context, share *model.CostShare) error
	FindByID(ctx context.Context, id string) (*model.CostShare, error)
	FindByGroup(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, error)
	CountByGroup(ctx context.Context, groupID string) (int64, error)
	Update(ctx context.Context, id string, share *model.CostShare) error
	SoftDelete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCostShareRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCostShareRepository(cfg *config.Config) CostShareRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCostShareRepository{
		cfg:        cfg,
		collection: db.Collection(CostShareCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCostShareRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCostShareRepository) Create(ctx context.Context, share *model.CostShare) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	share.CreatedAt = now
	share.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, share)
	if err != nil {
		return fmt.Errorf("failed to create cost share: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		share.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCostShareRepository) FindByID(ctx context.Context, id string) (*model.CostShare, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	var share model.CostShare
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "is_deleted": false}).Decode(&share)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrCostShareNotFound
		}
		return nil, fmt.Errorf("failed to find cost share: %w", err)
	}

	return &share, nil
}

func (r *mongoCostShareRepository) FindByGroup(ctx context.Context, groupID string, limit int, offset int64) ([]*model.CostShare, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID, "is_deleted": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cost shares by group: %w", err)
	}
	defer cursor.Close(ctx)

	var shares []*model.CostShare
	if err = cursor.All(ctx, &shares); err != nil {
		return nil, fmt.Errorf("failed to decode cost shares: %w", err)
	}

	return shares, nil
}

func (r *mongoCostShareRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"group_id": groupID, "is_deleted": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count cost shares: %w", err)
	}

	return count, nil
}

func (r *mongoCostShareRepository) Update(ctx context.Context, id string, share *model.CostShare) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	share.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"title":       share.Title,
			"description": share.Description,
			"due_date":    share.DueDate,
			"status":      share.Status,
			"details":     share.Details,
			"updated_at":  share.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "is_deleted": false}, update)
	if err != nil {
		return fmt.Errorf("failed to update cost share: %w", err)
	}

	if result.MatchedCount == 0 {
		return paymentserrors.ErrCostShareNotFound
	}

	return nil
}

func (r *mongoCostShareRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "is_deleted": false}, update)
	if err != nil {
		return fmt.Errorf("failed to delete cost share: %w", err)
	}

	if result.MatchedCount == 0 {
		return paymentserrors.ErrCostShareNotFound
	}

	return nil
}

func (r *mongoCostShareRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
