package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evshare/pkg/config"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CoOwnerCollectionName = "Co_owners"
)

// CoOwnerRepository resolves co-owners and persists the usage-count mutation
// applied when a booking is granted. Save must be called with a session
// context when it participates in a booking transaction.
type CoOwnerRepository interface {
	FindByID(ctx context.Context, id string) (*model.CoOwner, error)
	FindAll(ctx context.Context) ([]*model.CoOwner, error)
	Save(ctx context.Context, coOwner *model.CoOwner) error
}

type mongoCoOwnerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCoOwnerRepository(cfg *config.Config) CoOwnerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCoOwnerRepository{
		cfg:        cfg,
		collection: db.Collection(CoOwnerCollectionName),
	}
}

func (r *mongoCoOwnerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCoOwnerRepository) FindByID(ctx context.Context, id string) (*model.CoOwner, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var coOwner model.CoOwner
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&coOwner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCoOwnerNotFound
		}
		return nil, fmt.Errorf("failed to find co-owner: %w", err)
	}

	return &coOwner, nil
}

func (r *mongoCoOwnerRepository) FindAll(ctx context.Context) ([]*model.CoOwner, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find co-owners: %w", err)
	}
	defer cursor.Close(ctx)

	var coOwners []*model.CoOwner
	if err = cursor.All(ctx, &coOwners); err != nil {
		return nil, fmt.Errorf("failed to decode co-owners: %w", err)
	}

	return coOwners, nil
}

func (r *mongoCoOwnerRepository) Save(ctx context.Context, coOwner *model.CoOwner) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(coOwner.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, coOwner.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"name":              coOwner.Name,
			"ownership_percent": coOwner.OwnershipPercent,
			"usage_count":       coOwner.UsageCount,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to save co-owner: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCoOwnerNotFound
	}

	return nil
}
