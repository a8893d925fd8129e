package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	groupserrors "evshare/internal/groups/errors"
	"evshare/pkg/config"
	mongotx "evshare/pkg/db/mongo"
	"evshare/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	VoteCollectionName = "Votes"
)

type VoteRepository interface {
	Create(ctx context.Context, vote *model.Vote) error
	FindByID(ctx context.Context, id string) (*model.Vote, error)
	FindByGroup(ctx context.Context, groupID string) ([]*model.Vote, error)
	Update(ctx context.Context, id string, vote *model.Vote) (*mongo.UpdateResult, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoVoteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoVoteRepository(cfg *config.Config) VoteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVoteRepository{
		cfg:        cfg,
		collection: db.Collection(VoteCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoVoteRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoVoteRepository) Create(ctx context.Context, vote *model.Vote) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	vote.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, vote)
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vote.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVoteRepository) FindByID(ctx context.Context, id string) (*model.Vote, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", groupserrors.ErrInvalidID, id)
	}

	var vote model.Vote
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vote)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, groupserrors.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}

	return &vote, nil
}

func (r *mongoVoteRepository) FindByGroup(ctx context.Context, groupID string) ([]*model.Vote, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find votes by group: %w", err)
	}
	defer cursor.Close(ctx)

	var votes []*model.Vote
	if err = cursor.All(ctx, &votes); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}

	return votes, nil
}

func (r *mongoVoteRepository) Update(ctx context.Context, id string, vote *model.Vote) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", groupserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"topic":        vote.Topic,
			"result":       vote.Result,
			"member_votes": vote.MemberVotes,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update vote: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, groupserrors.ErrVoteNotFound
	}

	return result, nil
}

func (r *mongoVoteRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
