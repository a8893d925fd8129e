package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "evshare/internal/payments/errors"
	"evshare/pkg/config"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TransactionCollectionName = "Transactions"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByReference(ctx context.Context, reference string) (*model.Transaction, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error
}

type mongoTransactionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransactionRepository(cfg *config.Config) TransactionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTransactionRepository{
		cfg:        cfg,
		collection: db.Collection(TransactionCollectionName),
	}
}

func (r *mongoTransactionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTransactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	txn.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		txn.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTransactionRepository) FindByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var txn model.Transaction
	err := r.collection.FindOne(ctx, bson.M{"reference": reference}).Decode(&txn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by reference: %w", err)
	}

	return &txn, nil
}

func (r *mongoTransactionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txns []*model.Transaction
	if err = cursor.All(ctx, &txns); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txns, nil
}

func (r *mongoTransactionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

func (r *mongoTransactionRepository) UpdateStatus(ctx context.Context, id string, status model.TransactionStatus) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.MatchedCount == 0 {
		return paymentserrors.ErrTransactionNotFound
	}

	return nil
}
