package repository

import (
	"context"
	"time"

	"evshare/pkg/config"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// VehicleLockRepository provides operations for advisory locks. One lock
// document per vehicle serializes concurrent booking creation; a TTL index on
// expires_at reaps locks orphaned by a crashed holder.
type VehicleLockRepository interface {
	Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoVehicleLockRepository struct {
	collection *mongo.Collection
}

func NewVehicleLockRepository(cfg *config.Config) VehicleLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleLockRepository{
		collection: db.Collection("Vehicle_locks"),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoVehicleLockRepository) Create(ctx context.Context, lock *model.VehicleLock) (*model.VehicleLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoVehicleLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
