package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	groupserrors "evshare/internal/groups/errors"
	"evshare/pkg/config"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	GroupCollectionName = "Groups"
)

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	FindByID(ctx context.Context, id string) (*model.Group, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Group, error)
	Count(ctx context.Context) (int64, error)
}

type mongoGroupRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGroupRepository(cfg *config.Config) GroupRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGroupRepository{
		cfg:        cfg,
		collection: db.Collection(GroupCollectionName),
	}
}

func (r *mongoGroupRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoGroupRepository) Create(ctx context.Context, group *model.Group) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	group.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		group.ID = oid.Hex()
	}
	return nil
}

func (r *mongoGroupRepository) FindByID(ctx context.Context, id string) (*model.Group, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", groupserrors.ErrInvalidID, id)
	}

	var group model.Group
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, groupserrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	return &group, nil
}

func (r *mongoGroupRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Group, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []*model.Group
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}

	return groups, nil
}

func (r *mongoGroupRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}

	return count, nil
}
